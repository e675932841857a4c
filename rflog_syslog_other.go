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

//go:build !linux

package rflog

// NewSyslogBackend is a no-op backend for platforms other than linux.
func NewSyslogBackend(ident string) (*SyslogBackend, error) {
	return &SyslogBackend{
		ident:   ident,
		metrics: &sinkMetrics{},
	}, nil
}

// Log is no-op for platforms other than linux.
func (sb *SyslogBackend) Log(entry LogEntry) {}
