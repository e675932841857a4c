//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package rflog

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"yunion.io/x/pkg/errors"
)

const (
	// ErrInvalidLevel is the cause of every level parsing error.
	ErrInvalidLevel = errors.Error("InvalidLevelError")
	// ErrInvalidValue is the cause of boolean and numeric parsing errors.
	ErrInvalidValue = errors.Error("InvalidValueError")
)

// Environment variables read by LoadConfig.
const (
	EnvLevel           = "RFLOG_LEVEL"
	EnvConsoleLevel    = "RFLOG_CONSOLE_LEVEL"
	EnvConsoleDisable  = "RFLOG_CONSOLE_DISABLE"
	EnvConsoleColor    = "RFLOG_CONSOLE_COLOR"
	EnvConsoleTime     = "RFLOG_CONSOLE_TIME"
	EnvConsoleThread   = "RFLOG_CONSOLE_THREAD"
	EnvConsoleSrc      = "RFLOG_CONSOLE_SRC"
	EnvFile            = "RFLOG_FILE"
	EnvFileLevel       = "RFLOG_FILE_LEVEL"
	EnvFileMaxSize     = "RFLOG_FILE_MAX_SIZE"
	EnvFileMaxBackups  = "RFLOG_FILE_MAX_BACKUPS"
	EnvFastpathDisable = "RFLOG_FASTPATH_DISABLE"
	EnvSyslog          = "RFLOG_SYSLOG"
	EnvSerialPort      = "RFLOG_SERIAL_PORT"
	EnvSerialBaud      = "RFLOG_SERIAL_BAUD"
	EnvEventlog        = "RFLOG_EVENTLOG"
	EnvCloudProject    = "RFLOG_CLOUD_PROJECT"
	EnvCloudLogID      = "RFLOG_CLOUD_LOG_ID"
)

// Build time overrides, set with:
//
//	go build -ldflags "-X github.com/rfkit/rflog.buildLevel=info"
var (
	buildLevel           string
	buildConsoleLevel    string
	buildConsoleDisable  string
	buildConsoleColor    string
	buildConsoleTime     string
	buildConsoleThread   string
	buildConsoleSrc      string
	buildFile            string
	buildFileLevel       string
	buildFastpathDisable string
)

// buildVars maps the build time variables to the environment variables they
// shadow.
var buildVars = map[string]*string{
	EnvLevel:           &buildLevel,
	EnvConsoleLevel:    &buildConsoleLevel,
	EnvConsoleDisable:  &buildConsoleDisable,
	EnvConsoleColor:    &buildConsoleColor,
	EnvConsoleTime:     &buildConsoleTime,
	EnvConsoleThread:   &buildConsoleThread,
	EnvConsoleSrc:      &buildConsoleSrc,
	EnvFile:            &buildFile,
	EnvFileLevel:       &buildFileLevel,
	EnvFastpathDisable: &buildFastpathDisable,
}

// ConsoleOptions toggles the optional fields of the console format.
type ConsoleOptions struct {
	// Color enables per level colors, only honored on terminals.
	Color bool
	// Time prints the entry timestamp.
	Time bool
	// Thread prints the producing goroutine id.
	Thread bool
	// Source prints the caller file and line.
	Source bool
}

// Config is the resolved logger configuration.
type Config struct {
	// Level is the global threshold.
	Level Level
	// ConsoleDisabled prevents the console sink registration.
	ConsoleDisabled bool
	// ConsoleLevel is the console sink threshold.
	ConsoleLevel Level
	// Console holds the console format toggles.
	Console ConsoleOptions
	// ConsoleWriter overrides the console destination, defaults to stderr.
	ConsoleWriter io.Writer
	// FilePath is the file sink target, no file sink is created when empty.
	FilePath string
	// FileLevel is the file sink threshold.
	FileLevel Level
	// FileMaxSizeMB enables size based rotation of the log file when > 0.
	FileMaxSizeMB int
	// FileMaxBackups is the number of rotated files to retain.
	FileMaxBackups int
	// FastpathDisabled turns the fastpath channel off.
	FastpathDisabled bool
	// SyslogIdent enables the syslog sink with the given ident.
	SyslogIdent string
	// SerialPort enables the serial port sink.
	SerialPort string
	// SerialBaud is the serial port baud rate.
	SerialBaud int
	// EventlogIdent enables the windows event log sink.
	EventlogIdent string
	// CloudProject enables the cloud logging sink.
	CloudProject string
	// CloudLogID is the cloud logging log name.
	CloudLogID string
	// ErrorWriter is the unbuffered error stream, defaults to stderr.
	ErrorWriter io.Writer
	// QueueSize is the capacity of the event and fastpath queues.
	QueueSize int
	// PushTimeout is the max time a producer waits on a full event queue.
	PushTimeout time.Duration

	errs []error
}

// DefaultConfig returns the compiled in defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:        OffLevel,
		ConsoleLevel: TraceLevel,
		Console:      ConsoleOptions{Color: true},
		FileLevel:    TraceLevel,
		SerialBaud:   115200,
		CloudLogID:   "rflog",
		QueueSize:    defaultQueueSize,
		PushTimeout:  defaultPushTimeout,
	}
}

// LoadConfig resolves the configuration from the compiled in defaults, the
// build time overrides and the environment, in this order. The last valid
// value wins, invalid values are recorded (see Errors) and ignored.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.load("build", buildLookup)
	cfg.load("environment", envLookup)
	return cfg
}

// Errors returns the errors found while resolving the configuration.
func (cfg *Config) Errors() []error {
	return cfg.errs
}

// lookupFunc returns the raw value of a configuration key.
type lookupFunc func(key string) (string, bool)

func buildLookup(key string) (string, bool) {
	val, found := buildVars[key]
	if !found || *val == "" {
		return "", false
	}
	return *val, true
}

func envLookup(key string) (string, bool) {
	val, found := os.LookupEnv(key)
	if !found || val == "" {
		return "", false
	}
	return val, true
}

// load applies every key found by lookup on top of cfg.
func (cfg *Config) load(source string, lookup lookupFunc) {
	cfg.loadLevel(source, lookup, EnvLevel, &cfg.Level)
	cfg.loadBool(source, lookup, EnvConsoleDisable, &cfg.ConsoleDisabled)
	cfg.loadLevel(source, lookup, EnvConsoleLevel, &cfg.ConsoleLevel)
	cfg.loadBool(source, lookup, EnvConsoleColor, &cfg.Console.Color)
	cfg.loadBool(source, lookup, EnvConsoleTime, &cfg.Console.Time)
	cfg.loadBool(source, lookup, EnvConsoleThread, &cfg.Console.Thread)
	cfg.loadBool(source, lookup, EnvConsoleSrc, &cfg.Console.Source)
	cfg.loadString(lookup, EnvFile, &cfg.FilePath)
	cfg.loadLevel(source, lookup, EnvFileLevel, &cfg.FileLevel)
	cfg.loadInt(source, lookup, EnvFileMaxSize, &cfg.FileMaxSizeMB)
	cfg.loadInt(source, lookup, EnvFileMaxBackups, &cfg.FileMaxBackups)
	cfg.loadBool(source, lookup, EnvFastpathDisable, &cfg.FastpathDisabled)
	cfg.loadString(lookup, EnvSyslog, &cfg.SyslogIdent)
	cfg.loadString(lookup, EnvSerialPort, &cfg.SerialPort)
	cfg.loadInt(source, lookup, EnvSerialBaud, &cfg.SerialBaud)
	cfg.loadString(lookup, EnvEventlog, &cfg.EventlogIdent)
	cfg.loadString(lookup, EnvCloudProject, &cfg.CloudProject)
	cfg.loadString(lookup, EnvCloudLogID, &cfg.CloudLogID)
}

func (cfg *Config) loadLevel(source string, lookup lookupFunc, key string, dst *Level) {
	val, found := lookup(key)
	if !found {
		return
	}

	level, err := ParseLevel(val)
	if err != nil {
		cfg.errs = append(cfg.errs, errors.Wrapf(ErrInvalidLevel, "%s %s=%q, valid levels: %s", source, key, val, ValidLevels()))
		return
	}
	*dst = level
}

func (cfg *Config) loadBool(source string, lookup lookupFunc, key string, dst *bool) {
	val, found := lookup(key)
	if !found {
		return
	}

	res, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		cfg.errs = append(cfg.errs, errors.Wrapf(ErrInvalidValue, "%s %s=%q is not a boolean", source, key, val))
		return
	}
	*dst = res
}

func (cfg *Config) loadInt(source string, lookup lookupFunc, key string, dst *int) {
	val, found := lookup(key)
	if !found {
		return
	}

	res, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || res < 0 {
		cfg.errs = append(cfg.errs, errors.Wrapf(ErrInvalidValue, "%s %s=%q is not a non negative integer", source, key, val))
		return
	}
	*dst = res
}

func (cfg *Config) loadString(lookup lookupFunc, key string, dst *string) {
	if val, found := lookup(key); found {
		*dst = val
	}
}

// ParseLevel returns the level named by token. Names are case insensitive,
// "warn" is accepted as an alias of "warning", ordinals 0 (trace) to 6 (off)
// are accepted too.
func ParseLevel(token string) (Level, error) {
	token = strings.ToUpper(strings.TrimSpace(token))

	if token == "WARN" {
		return WarningLevel, nil
	}

	for lvl := TraceLevel; lvl <= OffLevel; lvl++ {
		if token == levelTags[lvl] {
			return lvl, nil
		}
	}

	if token == "" || token[0] < '0' || token[0] > '9' {
		return OffLevel, errors.Wrapf(ErrInvalidLevel, "%q", token)
	}

	ordinal, err := strconv.Atoi(token)
	if err != nil || ordinal < int(TraceLevel) || ordinal > int(OffLevel) {
		return OffLevel, errors.Wrapf(ErrInvalidLevel, "%q", token)
	}
	return Level(ordinal), nil
}
