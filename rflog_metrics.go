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
	"sync"
)

// maxErrorMsgs is the max number of error messages kept by a sinkMetrics.
const maxErrorMsgs = 16

// sinkMetrics counts the writes of a sink. Sinks never report failures to
// the producers, the metrics are the only trace of them.
type sinkMetrics struct {
	// mu protects metric updates.
	mu sync.Mutex
	// success is the number of successful log entry writes.
	success int64
	// errors is the number of failed log entry writes.
	errors int64
	// errorMsgs is the list of the most recent error messages.
	errorMsgs []string
}

// SinkStats is a snapshot of a sink's write counters.
type SinkStats struct {
	// Success is the number of successful log entry writes.
	Success int64
	// Errors is the number of failed log entry writes.
	Errors int64
	// ErrorMsgs are the most recent error messages, oldest first.
	ErrorMsgs []string
}

func (m *sinkMetrics) record(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		m.success++
		return
	}

	m.errors++
	m.errorMsgs = append(m.errorMsgs, err.Error())
	if len(m.errorMsgs) > maxErrorMsgs {
		m.errorMsgs = m.errorMsgs[len(m.errorMsgs)-maxErrorMsgs:]
	}
}

func (m *sinkMetrics) stats() SinkStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return SinkStats{
		Success:   m.success,
		Errors:    m.errors,
		ErrorMsgs: append([]string(nil), m.errorMsgs...),
	}
}
