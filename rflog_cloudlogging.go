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
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	logpb "cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/api/option"
)

// CloudLoggingInitMode is the cloud logging backend initialization mode.
type CloudLoggingInitMode int

const (
	// CloudLoggingInitModeLazy is the lazy initialization mode. In this mode the
	// backend object is created but the cloud logging client and logger are not
	// initialized until the first call to InitClient.
	CloudLoggingInitModeLazy CloudLoggingInitMode = iota
	// CloudLoggingInitModeActive is the active initialization mode. In this mode
	// the backend object is created and the cloud logging client and logger are
	// initialized immediately.
	CloudLoggingInitModeActive
	// CloudLoggingTimeout is the default timeout for the cloud logging backend
	// flush operation.
	CloudLoggingTimeout = 3 * time.Second
	// DefaultClientErrorInterval is the default min interval between two
	// reports of cloud logging client errors.
	DefaultClientErrorInterval = 10 * time.Minute
)

var (
	// errCloudLoggingNotInitialized is the error returned when the cloud
	// logging backend is not yet initialized.
	errCloudLoggingNotInitialized = errors.New("cloud logging logger is not yet fully initialized")

	// errCloudLoggingAlreadyInitialized is the error returned when the InitClient
	// is called and  cloud logging backend is already initialized.
	errCloudLoggingAlreadyInitialized = errors.New("cloud logging logger is already initialized")
)

// CloudBackend is a Backend implementation for cloud logging.
type CloudBackend struct {
	// mu protects client, logger and opts.
	mu sync.Mutex
	// client is the cloud logging client pointer.
	client *logging.Client
	// logger is the cloud logging logger pointer.
	logger *logging.Logger
	// opts is the cloud logging options.
	opts *CloudOptions
	// periodicLogger rate limits the client error reports.
	periodicLogger *periodicLogger
	// disableClientErrorLogging drops the client errors instead of reporting
	// them.
	disableClientErrorLogging bool
	// metrics is the cloud logging write metrics.
	metrics *sinkMetrics
}

// CloudOptions defines the cloud logging behavior and setup options.
type CloudOptions struct {
	// Ident is the logger's ident, or the logger's name.
	Ident string
	// ProgramName is the program name, it's used on the logging payload.
	ProgramName string
	// ProgramVersion is the program version, it's used on the logging payload.
	ProgramVersion string
	// Project the gcp project name.
	Project string
	// Instance the running instance name.
	Instance string
	// UserAgent is the logging user agent option.
	UserAgent string
	// FlushCadence is how frequently we should push the log to the server.
	FlushCadence time.Duration
	// WithoutAuthentication is whether to use authentication for cloud logging
	// operations.
	WithoutAuthentication bool
	// DisableClientErrorLogging drops the errors reported by the cloud logging
	// client.
	DisableClientErrorLogging bool
	// ClientErrorInterval is the min interval between two client error
	// reports, defaults to DefaultClientErrorInterval.
	ClientErrorInterval time.Duration
	// ErrorWriter receives the client error reports, defaults to stderr.
	ErrorWriter io.Writer
}

// CloudEntryPayload contains the data to be sent to cloud logging as the
// entry payload. It's translated from the log subsystem's Entry structure.
type CloudEntryPayload struct {
	// Message is the formatted message.
	Message string `json:"message"`
	// Component is the subsystem that emitted the entry.
	Component string `json:"component,omitempty"`
	// Thread is the producing goroutine id.
	Thread string `json:"thread,omitempty"`
	// LocalTimestamp is the unix timestamp got from the entry's When field.
	LocalTimestamp string `json:"localTimestamp"`
	// ProgName is the program name - or the binary name.
	ProgName string `json:"progName,omitempty"`
	// ProgVersion is the program version.
	ProgVersion string `json:"progVersion,omitempty"`
}

// periodicLogger writes errors to a writer at most once per interval.
type periodicLogger struct {
	// mu protects lastLog and firstRunPassed.
	mu sync.Mutex
	// writer receives the error messages.
	writer io.Writer
	// interval is the min time between two writes.
	interval time.Duration
	// lastLog is the time of the last write.
	lastLog time.Time
	// firstRunPassed is true after the first write, the first error is
	// always written.
	firstRunPassed bool
}

// log writes err unless another error was written less than interval ago.
// It returns whether err was written.
func (pl *periodicLogger) log(err error) bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.firstRunPassed && time.Since(pl.lastLog) < pl.interval {
		return false
	}

	pl.firstRunPassed = true
	pl.lastLog = time.Now()
	if pl.writer != nil {
		fmt.Fprintf(pl.writer, "cloud logging client error: %v\n", err)
	}
	return true
}

// NewCloudBackend returns a Backend implementation that will log out to google
// cloud logging.
//
// Initialization Mode:
//
// If mode is InitModeLazy the backend object will be allocated and only the
// the basic elements will be initialized, entries logged before InitClient is
// called are dropped and counted as errors.
//
// The Cloud Logging depends on instance name that's mainly a data fed by - or
// accessed from - metadata server and depending on the application and
// environment the metadata server might not be available at the time of the
// application start - being only available later on.
func NewCloudBackend(ctx context.Context, mode CloudLoggingInitMode, opts *CloudOptions) (*CloudBackend, error) {
	res := &CloudBackend{
		metrics: &sinkMetrics{},
	}

	if mode == CloudLoggingInitModeActive {
		if err := res.InitClient(ctx, opts); err != nil {
			return nil, fmt.Errorf("failed to initialize cloud logging client: %+v", err)
		}
	}

	return res, nil
}

// InitClient initializes the cloud logging client and logger. If the client
// is already initialized, either by "active" mode or by a previous call, it
// returns errCloudLoggingAlreadyInitialized and changes nothing.
func (cb *CloudBackend) InitClient(ctx context.Context, opts *CloudOptions) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.client != nil {
		return errCloudLoggingAlreadyInitialized
	}

	var clientOptions []option.ClientOption

	if opts.UserAgent != "" {
		clientOptions = append(clientOptions, option.WithUserAgent(opts.UserAgent))
	}

	if opts.WithoutAuthentication {
		clientOptions = append(clientOptions, option.WithoutAuthentication())
	}

	client, err := logging.NewClient(ctx, opts.Project, clientOptions...)
	if err != nil {
		return fmt.Errorf("failed to initialize cloud logging client: %+v", err)
	}

	interval := opts.ClientErrorInterval
	if interval <= 0 {
		interval = DefaultClientErrorInterval
	}

	writer := opts.ErrorWriter
	if writer == nil {
		writer = os.Stderr
	}

	cb.periodicLogger = &periodicLogger{writer: writer, interval: interval}
	cb.disableClientErrorLogging = opts.DisableClientErrorLogging

	client.OnError = func(err error) {
		if cb.disableClientErrorLogging {
			return
		}
		cb.periodicLogger.log(err)
	}

	var loggerOptions []logging.LoggerOption

	if opts.Instance != "" {
		labelOption := logging.CommonLabels(
			map[string]string{
				"instance_name": opts.Instance,
			},
		)
		loggerOptions = append(loggerOptions, labelOption)
	}

	if opts.FlushCadence > 0 {
		loggerOptions = append(loggerOptions, logging.DelayThreshold(opts.FlushCadence))
	}
	logger := client.Logger(opts.Ident, loggerOptions...)

	cb.client = client
	cb.logger = logger
	cb.opts = opts

	return nil
}

// Log sends the log entry to cloud logging.
func (cb *CloudBackend) Log(entry LogEntry) {
	cb.metrics.record(cb.writeEntry(entry))
}

func (cb *CloudBackend) writeEntry(entry LogEntry) error {
	cb.mu.Lock()
	logger, opts := cb.logger, cb.opts
	cb.mu.Unlock()

	// If the logger is nil it means the backend is lazy initialized and
	// InitClient wasn't called yet.
	if logger == nil {
		return errCloudLoggingNotInitialized
	}

	levelMap := map[Level]logging.Severity{
		FatalLevel:   logging.Critical,
		ErrorLevel:   logging.Error,
		WarningLevel: logging.Warning,
		InfoLevel:    logging.Info,
		DebugLevel:   logging.Debug,
		TraceLevel:   logging.Debug,
	}

	sourceLocation := &logpb.LogEntrySourceLocation{
		File:     entry.File,
		Line:     int64(entry.Line),
		Function: entry.Function,
	}

	payload := &CloudEntryPayload{
		Message:        entry.Message,
		Component:      entry.Component,
		Thread:         entry.ThreadHex(),
		LocalTimestamp: entry.When.Format("2006-01-02T15:04:05.0000Z07:00"),
		ProgName:       opts.ProgramName,
		ProgVersion:    opts.ProgramVersion,
	}

	logger.Log(logging.Entry{
		Timestamp:      entry.When,
		Severity:       levelMap[entry.Level],
		SourceLocation: sourceLocation,
		Payload:        payload,
	})

	return nil
}

// Flush forces the cloud logging backend to flush its content.
func (cb *CloudBackend) Flush(ctx context.Context) error {
	cb.mu.Lock()
	client, logger := cb.client, cb.logger
	cb.mu.Unlock()

	if logger == nil {
		return errCloudLoggingNotInitialized
	}

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach cloud logging, skipping flush: %v", err)
	}

	if err := logger.Flush(); err != nil {
		return fmt.Errorf("failed to flush cloud logging: %v", err)
	}
	return nil
}

// Close flushes the pending entries, waiting at most CloudLoggingTimeout, and
// closes the cloud logging client. The backend is detached either way, but if
// the flush fails the flush error is returned and the client is left open:
// closing it would block on the writes the endpoint can't accept.
func (cb *CloudBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), CloudLoggingTimeout)
	defer cancel()

	flushErr := cb.Flush(ctx)

	cb.mu.Lock()
	client := cb.client
	cb.client, cb.logger = nil, nil
	cb.mu.Unlock()

	if errors.Is(flushErr, errCloudLoggingNotInitialized) {
		return nil
	}

	// Closing an unreachable client blocks on its pending writes.
	if flushErr != nil {
		return flushErr
	}

	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close cloud logging client: %v", err)
	}
	return nil
}

// Stats returns the cloud logging write counters.
func (cb *CloudBackend) Stats() SinkStats {
	return cb.metrics.stats()
}
