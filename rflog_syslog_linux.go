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

//go:build linux

package rflog

import (
	"fmt"
	"log/syslog"
)

// NewSyslogBackend returns a Backend implementation that will log out to
// the system log with the given ident.
func NewSyslogBackend(ident string) (*SyslogBackend, error) {
	return &SyslogBackend{
		ident:   ident,
		metrics: &sinkMetrics{},
	}, nil
}

// Log writes the log entry to syslog.
func (sb *SyslogBackend) Log(entry LogEntry) {
	sb.metrics.record(sb.writeEntry(entry))
}

func (sb *SyslogBackend) writeEntry(entry LogEntry) error {
	writer, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, sb.ident)
	if err != nil {
		return fmt.Errorf("opening syslog: %v", err)
	}
	defer writer.Close()

	message, err := entry.Format(syslogFormat)
	if err != nil {
		return fmt.Errorf("formating syslog message: %v", err)
	}

	ops := map[Level]func(string) error{
		TraceLevel:   writer.Debug,
		DebugLevel:   writer.Debug,
		InfoLevel:    writer.Info,
		WarningLevel: writer.Warning,
		ErrorLevel:   writer.Err,
		FatalLevel:   writer.Crit,
	}

	if ptr, found := ops[entry.Level]; found {
		if err := ptr(message); err != nil {
			return fmt.Errorf("writing to syslog: %v", err)
		}
	}

	return nil
}
