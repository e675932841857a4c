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
	"fmt"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultSerialBaud is the default serial baud for serial port writing.
	DefaultSerialBaud = 115200

	// serialFormat is the template used to render entries on the serial port.
	serialFormat = `{{.When.Format "2006-01-02T15:04:05.0000Z07:00"}} [{{.Level}}] [{{.Component}}]: ({{.Filename}}:{{.Line}}) {{.Message}}`
)

// SerialBackend is an implementation for logging to serial.
type SerialBackend struct {
	// mu protects port.
	mu sync.Mutex
	// opts is the serial configuration options.
	opts *SerialOptions
	// port is the open serial port, nil once closed.
	port serial.Port
	// metrics is the serial write metrics.
	metrics *sinkMetrics
}

// SerialOptions contains the options for serial backend.
type SerialOptions struct {
	// Port is the serial port name to be written to.
	Port string
	// Baud is the serial port baud.
	Baud int
}

// NewSerialBackend opens the configured serial port and returns a Backend
// implementation that will log out to it.
func NewSerialBackend(opts *SerialOptions) (*SerialBackend, error) {
	if opts.Baud <= 0 {
		opts.Baud = DefaultSerialBaud
	}

	port, err := serial.Open(opts.Port, &serial.Mode{BaudRate: opts.Baud})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port: %+v", err)
	}

	return &SerialBackend{
		opts:    opts,
		port:    port,
		metrics: &sinkMetrics{},
	}, nil
}

// Log prints the log entry to the serial port.
func (sb *SerialBackend) Log(entry LogEntry) {
	sb.metrics.record(sb.writeEntry(entry))
}

func (sb *SerialBackend) writeEntry(entry LogEntry) error {
	message, err := entry.Format(serialFormat + "\n")
	if err != nil {
		return fmt.Errorf("failed to format log level: %+v", err)
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.port == nil {
		return fmt.Errorf("serial port %s is closed", sb.opts.Port)
	}

	nn, err := sb.port.Write([]byte(message))
	if err != nil {
		return fmt.Errorf("failed to write log to serial: %+v", err)
	}

	if nn != len(message) {
		return fmt.Errorf("failed to write the message, wrote %d bytes out of %d bytes", nn, len(message))
	}

	return nil
}

// Close closes the serial port.
func (sb *SerialBackend) Close() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.port == nil {
		return nil
	}

	err := sb.port.Close()
	sb.port = nil
	return err
}

// Stats returns the serial write counters.
func (sb *SerialBackend) Stats() SinkStats {
	return sb.metrics.stats()
}
