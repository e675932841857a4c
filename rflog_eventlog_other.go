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

//go:build !windows

package rflog

// NewEventlogBackend returns a no-op EventlogBackend, the windows event log
// only exists on windows.
func NewEventlogBackend(eventID uint32, ident string) (*EventlogBackend, error) {
	return &EventlogBackend{
		eventID: eventID,
		ident:   ident,
		metrics: &sinkMetrics{},
	}, nil
}

// Log is a no-op outside windows.
func (eb *EventlogBackend) Log(entry LogEntry) {}
