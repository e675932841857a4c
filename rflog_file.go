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
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// errFileBackendClosed is recorded for writes after the backend was closed.
var errFileBackendClosed = errors.New("file backend is closed")

// FileOptions defines the file backend setup options.
type FileOptions struct {
	// Path is the log file path.
	Path string
	// MaxSizeMB rotates the file once it reaches this size, 0 disables the
	// rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain, 0 keeps them all.
	MaxBackups int
}

// FileBackend is an implementation for logging to a file. The file is
// appended to, never truncated, and stays open until Close.
type FileBackend struct {
	// mu protects writer and closed.
	mu sync.Mutex
	// logFilePath is the path of the log file.
	logFilePath string
	// writer is the open log file or the rotating writer wrapping it.
	writer io.WriteCloser
	// closed is true once Close was called.
	closed bool
	// metrics is the file write metrics.
	metrics *sinkMetrics
}

// NewFileBackend opens (creating it if needed) the file specified by opts
// and returns a Backend implementation logging to it.
func NewFileBackend(opts FileOptions) (*FileBackend, error) {
	logFile, err := os.OpenFile(opts.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create/open log file %q: %w", opts.Path, err)
	}

	res := &FileBackend{
		logFilePath: opts.Path,
		writer:      logFile,
		metrics:     &sinkMetrics{},
	}

	if opts.MaxSizeMB > 0 {
		// The file was opened only to validate the path, lumberjack manages
		// its own handle.
		logFile.Close()
		res.writer = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
	}

	return res, nil
}

// Log appends the log entry to the file as:
//
//	time,0xthread,file:line,ordinal,component,message
func (fb *FileBackend) Log(entry LogEntry) {
	message := fmt.Sprintf("%s,%s,%s:%d,%d,%s,%s\n", entry.When.Format(timeLayout), entry.ThreadHex(),
		entry.Filename(), entry.Line, entry.Level, entry.Component, entry.Message)
	fb.metrics.record(fb.write(message))
}

func (fb *FileBackend) write(message string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.closed {
		return errFileBackendClosed
	}

	n, err := io.WriteString(fb.writer, message)
	if err != nil {
		return fmt.Errorf("failed to write log to file: %+v", err)
	}

	if n != len(message) {
		return fmt.Errorf("failed to write the message, wrote %d bytes out of %d bytes", n, len(message))
	}

	return nil
}

// Close closes the log file, later writes are discarded.
func (fb *FileBackend) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.closed {
		return nil
	}
	fb.closed = true

	if err := fb.writer.Close(); err != nil {
		return fmt.Errorf("failed to close log file %q: %w", fb.logFilePath, err)
	}
	return nil
}

// Stats returns the file write counters.
func (fb *FileBackend) Stats() SinkStats {
	return fb.metrics.stats()
}
