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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/petermattis/goid"
	"go.uber.org/atomic"

	"github.com/rfkit/rflog/internal/boundedbuf"
)

// Level is the severity of a log entry. Levels are totally ordered, OffLevel
// is only meaningful as a threshold and suppresses everything.
type Level int32

const (
	// TraceLevel is the most verbose log level.
	TraceLevel Level = iota
	// DebugLevel is the log level definition for Debug severity.
	DebugLevel
	// InfoLevel is the log level definition for Info severity.
	InfoLevel
	// WarningLevel is the log level definition for Warning severity.
	WarningLevel
	// ErrorLevel is the log level definition for Error severity.
	ErrorLevel
	// FatalLevel is the log level definition for Fatal severity.
	FatalLevel
	// OffLevel disables logging when used as a threshold.
	OffLevel
)

// State is the lifecycle state of a Logger.
type State int32

const (
	// StateRunning means the consumers are dispatching entries.
	StateRunning State = iota
	// StateDraining means shutdown started and the queues are being emptied.
	StateDraining
	// StateStopped means the consumers exited and the sinks were released.
	StateStopped
)

const (
	// ConsoleSinkKey is the registry key of the built-in console sink.
	ConsoleSinkKey = "console"
	// FileSinkKey is the registry key of the built-in file sink.
	FileSinkKey = "file"
	// SyslogSinkKey is the registry key of the syslog sink.
	SyslogSinkKey = "syslog"
	// SerialSinkKey is the registry key of the serial port sink.
	SerialSinkKey = "serial"
	// EventlogSinkKey is the registry key of the windows event log sink.
	EventlogSinkKey = "eventlog"
	// CloudSinkKey is the registry key of the cloud logging sink.
	CloudSinkKey = "cloudlogging"

	// defaultQueueSize is the capacity of both the event and the fastpath
	// queues. They are rate decoupling buffers, under sustained overload
	// entries are dropped.
	defaultQueueSize = 10

	// defaultPushTimeout is how long a producer waits for room in a full
	// event queue before the entry is dropped.
	defaultPushTimeout = 250 * time.Millisecond

	// logComponent tags entries emitted by the logger about itself.
	logComponent = "LOG"

	// bannerComponent tags the startup banner.
	bannerComponent = "RFLOG"

	// timeLayout is the timestamp layout used by the console and file sinks.
	timeLayout = "2006-Jan-02 15:04:05.000000"
)

var (
	// levelTags are the display names of the levels, indexed by Level.
	levelTags = [...]string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "FATAL", "OFF"}

	// templateCache maps format strings to their parsed templates.
	templateCache sync.Map

	// defaultLogger is the process wide logger, see Default.
	defaultLogger *Logger
	// defaultMu guards the lazy initialization of defaultLogger.
	defaultMu sync.Mutex
	// defaultReady is set once defaultLogger was initialized.
	defaultReady atomic.Bool
)

// String returns the string representation of a log level.
func (level Level) String() string {
	if level < TraceLevel || level > OffLevel {
		return "INVALID"
	}
	return levelTags[level]
}

// String returns the string representation of a logger state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// ValidLevels returns a string representation of all the valid levels.
func ValidLevels() string {
	var levels []string
	for lvl := TraceLevel; lvl <= OffLevel; lvl++ {
		levels = append(levels, fmt.Sprintf("%s(%d)", lvl, lvl))
	}
	return strings.Join(levels, ", ")
}

// LogEntry describes a log record. Once handed to the logger an entry is
// never modified, sinks receive their own copy.
type LogEntry struct {
	// When is the time when this log record/entry was created.
	When time.Time
	// Level is the log level of the log record/entry.
	Level Level
	// File is the file name of the log caller.
	File string
	// Line is the file's line of the log caller.
	Line int
	// Function is the function name of the log caller.
	Function string
	// Component names the subsystem that emitted the entry.
	Component string
	// ThreadID identifies the goroutine that produced the entry.
	ThreadID int64
	// Message is the formatted final log message. An empty message marks an
	// entry that must not be dispatched.
	Message string
}

// Filename returns the base name of the caller's file.
func (en LogEntry) Filename() string {
	return filepath.Base(en.File)
}

// ThreadHex returns the producing goroutine id in hexadecimal.
func (en LogEntry) ThreadHex() string {
	return fmt.Sprintf("0x%x", en.ThreadID)
}

// Format processes a template provided in format and return it as a string.
func (en LogEntry) Format(format string) (string, error) {
	tmpl, err := parseTemplate(format)
	if err != nil {
		return "", err
	}

	buffer := new(strings.Builder)
	if err := tmpl.Execute(buffer, en); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buffer.String(), nil
}

// parseTemplate returns the parsed template for format, parsing it only on
// first use.
func parseTemplate(format string) (*template.Template, error) {
	if cached, found := templateCache.Load(format); found {
		return cached.(*template.Template), nil
	}

	tmpl, err := template.New("").Parse(format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	templateCache.Store(format, tmpl)
	return tmpl, nil
}

// Logger is the log routing engine. It owns the event and fastpath queues,
// the backend registry and the two consumer goroutines draining the queues.
type Logger struct {
	// level is the global threshold read by every statement construction.
	level atomic.Int32

	// exit is set when the shutdown starts, consumers switch to drain mode
	// once they observe it.
	exit atomic.Bool

	// state is the current State of the logger.
	state atomic.Int32

	// registry holds the registered sinks and their thresholds.
	registry *registry

	// queue carries structured entries to the event consumer.
	queue *boundedbuf.Buffer[LogEntry]

	// fastpathQueue carries raw strings to the fastpath consumer.
	fastpathQueue *boundedbuf.Buffer[string]

	// fastpathEnabled is false when the fastpath was disabled by
	// configuration, in which case fastpath messages are discarded.
	fastpathEnabled bool

	// errWriter is the unbuffered error stream, the fastpath consumer and
	// sink setup failures write to it.
	errWriter io.Writer

	// pushTimeout is the max time a producer waits on a full event queue.
	pushTimeout time.Duration

	// wg tracks the consumer goroutines.
	wg sync.WaitGroup

	// shutdownOnce makes sure the teardown runs only once.
	shutdownOnce sync.Once
}

// New allocates and starts a Logger configured by cfg. A nil cfg is
// equivalent to LoadConfig(). Most applications use the process wide logger
// returned by Default instead.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = LoadConfig()
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	pushTimeout := cfg.PushTimeout
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}

	errWriter := cfg.ErrorWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}

	lg := &Logger{
		registry:        newRegistry(),
		queue:           boundedbuf.New[LogEntry](queueSize),
		fastpathQueue:   boundedbuf.New[string](queueSize),
		fastpathEnabled: !cfg.FastpathDisabled,
		errWriter:       errWriter,
		pushTimeout:     pushTimeout,
	}
	lg.level.Store(int32(cfg.Level))
	lg.state.Store(int32(StateRunning))

	lg.setupSinks(cfg)

	// The banner goes straight to the queue, it's not subject to the global
	// threshold.
	lg.queue.PushWithTimedWait(LogEntry{
		When:      time.Now(),
		Level:     InfoLevel,
		File:      "rflog.go",
		Component: bannerComponent,
		ThreadID:  goid.Get(),
		Message:   systemInfo(),
	}, lg.pushTimeout)

	lg.wg.Add(1)
	go lg.runEvents()

	if lg.fastpathEnabled {
		lg.wg.Add(1)
		go lg.runFastpath()
	}

	// Config errors always reach the error stream, the LOG event only reaches
	// the sinks accepting ERROR.
	for _, err := range cfg.Errors() {
		fmt.Fprintf(lg.errWriter, "Error in logging configuration: %v\n", err)
		lg.push(LogEntry{
			When:      time.Now(),
			Level:     ErrorLevel,
			File:      "rflog_config.go",
			Component: logComponent,
			ThreadID:  goid.Get(),
			Message:   err.Error(),
		})
	}

	return lg
}

// setupSinks registers the sinks enabled by cfg. Sinks are best-effort: a
// sink that can't be opened is reported on the error stream and skipped.
func (lg *Logger) setupSinks(cfg *Config) {
	if !cfg.ConsoleDisabled {
		lg.registry.add(ConsoleSinkKey, cfg.ConsoleLevel, NewConsoleBackend(cfg.ConsoleWriter, cfg.Console).Log, nil)
	}

	if cfg.FilePath != "" {
		fb, err := NewFileBackend(FileOptions{
			Path:       cfg.FilePath,
			MaxSizeMB:  cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
		})
		if err != nil {
			fmt.Fprintf(lg.errWriter, "Error opening log file: %v\n", err)
		} else {
			lg.registry.add(FileSinkKey, cfg.FileLevel, fb.Log, fb)
		}
	}

	if cfg.SyslogIdent != "" {
		lg.addOptionalSink(SyslogSinkKey, func() (Backend, error) {
			return NewSyslogBackend(cfg.SyslogIdent)
		})
	}

	if cfg.SerialPort != "" {
		lg.addOptionalSink(SerialSinkKey, func() (Backend, error) {
			return NewSerialBackend(&SerialOptions{Port: cfg.SerialPort, Baud: cfg.SerialBaud})
		})
	}

	if cfg.EventlogIdent != "" {
		lg.addOptionalSink(EventlogSinkKey, func() (Backend, error) {
			return NewEventlogBackend(DefaultEventlogEventID, cfg.EventlogIdent)
		})
	}

	if cfg.CloudProject != "" {
		lg.addOptionalSink(CloudSinkKey, func() (Backend, error) {
			return NewCloudBackend(context.Background(), CloudLoggingInitModeActive, &CloudOptions{
				Ident:          cfg.CloudLogID,
				ProgramName:    filepath.Base(os.Args[0]),
				ProgramVersion: Version().String(),
				Project:        cfg.CloudProject,
				ErrorWriter:    lg.errWriter,
			})
		})
	}
}

// addOptionalSink registers the backend returned by open at the global
// threshold.
func (lg *Logger) addOptionalSink(key string, open func() (Backend, error)) {
	b, err := open()
	if err != nil {
		fmt.Fprintf(lg.errWriter, "Error opening %s sink: %v\n", key, err)
		return
	}
	lg.AddBackend(key, b)
}

// Default returns the process wide logger, initializing it from LoadConfig on
// first use. It's safe to call from any goroutine, concurrent first callers
// block until the initialization completes.
func Default() *Logger {
	if defaultReady.Load() {
		return defaultLogger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger == nil {
		defaultLogger = New(LoadConfig())
		defaultReady.Store(true)
	}
	return defaultLogger
}

// runEvents is the event queue consumer. It dispatches entries until the exit
// flag is set and then drains whatever is left in the queue.
func (lg *Logger) runEvents() {
	defer lg.wg.Done()

	for !lg.exit.Load() {
		lg.dispatch(lg.queue.PopWithWait())
	}

	for {
		entry, ok := lg.queue.PopWithHaste()
		if !ok {
			return
		}
		lg.dispatch(entry)
	}
}

// runFastpath is the fastpath queue consumer, it writes every message as is
// to the error stream.
func (lg *Logger) runFastpath() {
	defer lg.wg.Done()

	for !lg.exit.Load() {
		lg.writeFastpath(lg.fastpathQueue.PopWithWait())
	}

	for {
		msg, ok := lg.fastpathQueue.PopWithHaste()
		if !ok {
			return
		}
		lg.writeFastpath(msg)
	}
}

func (lg *Logger) writeFastpath(msg string) {
	if msg == "" {
		return
	}
	io.WriteString(lg.errWriter, msg)
}

// dispatch forwards entry to every sink whose threshold is lower or equal to
// the entry's level. Sinks are called sequentially, in key order, without
// holding the registry lock so they can log themselves.
func (lg *Logger) dispatch(entry LogEntry) {
	if entry.Message == "" {
		return
	}

	for _, sink := range lg.registry.matching(entry.Level) {
		sink(entry)
	}
}

// push enqueues entry waiting at most the push timeout. Entries that don't
// fit in time are dropped silently.
func (lg *Logger) push(entry LogEntry) {
	if lg.State() == StateStopped {
		return
	}
	lg.queue.PushWithTimedWait(entry, lg.pushTimeout)
}

// Fastpath enqueues msg on the fastpath channel without waiting and without
// any filtering, if the channel is full the message is dropped. The message
// is written as is, callers add their own line breaks if they want them.
func (lg *Logger) Fastpath(msg string) {
	if !lg.fastpathEnabled {
		return
	}
	lg.fastpathQueue.PushWithHaste(msg)
}

// SetLevel sets the global threshold. It only affects statements created
// afterwards, entries already queued are not reevaluated.
func (lg *Logger) SetLevel(level Level) {
	lg.level.Store(int32(level))
}

// CurrentLevel returns the global threshold.
func (lg *Logger) CurrentLevel() Level {
	return Level(lg.level.Load())
}

// enabled reports whether an entry of the given level passes the global
// threshold.
func (lg *Logger) enabled(level Level) bool {
	return level < OffLevel && level >= lg.CurrentLevel()
}

// AddSink registers fn under key at the current global threshold. An
// existing sink with the same key is replaced.
func (lg *Logger) AddSink(key string, fn SinkFunc) {
	lg.registry.add(key, lg.CurrentLevel(), fn, nil)
}

// AddBackend registers b under key at the current global threshold. If b
// implements io.Closer it's closed when it's replaced, removed or when the
// logger shuts down.
func (lg *Logger) AddBackend(key string, b Backend) {
	closer, _ := b.(io.Closer)
	lg.registry.add(key, lg.CurrentLevel(), b.Log, closer)
}

// SetSinkLevel sets the threshold of the sink registered under key. It's a
// no-op if no such sink exists.
func (lg *Logger) SetSinkLevel(key string, level Level) {
	lg.registry.setLevel(key, level)
}

// SetConsoleLevel sets the threshold of the built-in console sink.
func (lg *Logger) SetConsoleLevel(level Level) {
	lg.SetSinkLevel(ConsoleSinkKey, level)
}

// SetFileLevel sets the threshold of the built-in file sink.
func (lg *Logger) SetFileLevel(level Level) {
	lg.SetSinkLevel(FileSinkKey, level)
}

// RemoveSink unregisters the sink registered under key.
func (lg *Logger) RemoveSink(key string) {
	lg.registry.remove(key)
}

// Sinks returns the sorted list of registered sink keys.
func (lg *Logger) Sinks() []string {
	return lg.registry.keys()
}

// State returns the current lifecycle state.
func (lg *Logger) State() State {
	return State(lg.state.Load())
}

// Shutdown stops the logger. Every entry accepted by the queues before the
// call is dispatched before Shutdown returns, then all the sinks are
// unregistered (and closed when they own resources). Calling Shutdown more
// than once is safe, late callers block until the first call completes.
func (lg *Logger) Shutdown() {
	lg.shutdownOnce.Do(func() {
		lg.state.Store(int32(StateDraining))
		lg.exit.Store(true)

		// The consumers may be blocked waiting for data, the empty entries
		// wake them up and are never dispatched.
		lg.queue.PushWithTimedWait(LogEntry{
			When:      time.Now(),
			Level:     TraceLevel,
			File:      "rflog.go",
			Component: logComponent,
			ThreadID:  goid.Get(),
		}, lg.pushTimeout)
		if lg.fastpathEnabled {
			lg.fastpathQueue.PushWithHaste("")
		}

		lg.wg.Wait()
		lg.registry.clear()
		lg.state.Store(int32(StateStopped))
	})
}

// SetLevel sets the global threshold of the default logger.
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// CurrentLevel returns the default logger's global threshold.
func CurrentLevel() Level {
	return Default().CurrentLevel()
}

// AddSink registers fn with the default logger. This function is thread safe
// and can be called from any goroutine in the program.
func AddSink(key string, fn SinkFunc) {
	Default().AddSink(key, fn)
}

// AddBackend registers b with the default logger.
func AddBackend(key string, b Backend) {
	Default().AddBackend(key, b)
}

// SetSinkLevel sets the threshold of a sink of the default logger.
func SetSinkLevel(key string, level Level) {
	Default().SetSinkLevel(key, level)
}

// SetConsoleLevel sets the threshold of the default logger's console sink.
func SetConsoleLevel(level Level) {
	Default().SetConsoleLevel(level)
}

// SetFileLevel sets the threshold of the default logger's file sink.
func SetFileLevel(level Level) {
	Default().SetFileLevel(level)
}

// RemoveSink unregisters a sink from the default logger.
func RemoveSink(key string) {
	Default().RemoveSink(key)
}

// Sinks returns the keys of the default logger's sinks.
func Sinks() []string {
	return Default().Sinks()
}

// Fastpath sends msg through the default logger's fastpath channel.
func Fastpath(msg string) {
	Default().Fastpath(msg)
}

// Shutdown shuts down the default logger. It's a no-op if the default logger
// was never used, it waits for an initialization in progress.
func Shutdown() {
	// Taking the lock waits for an initialization running on another
	// goroutine.
	defaultMu.Lock()
	lg := defaultLogger
	defaultMu.Unlock()

	if lg != nil {
		lg.Shutdown()
	}
}
