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

const (
	// DefaultEventlogEventID is the event id used by the environment
	// configured eventlog backend.
	DefaultEventlogEventID uint32 = 33

	// eventlogFormat is the template used to render event log messages.
	eventlogFormat = "[{{.Component}}] ({{.Filename}}:{{.Line}}) {{.Message}}"
)

// EventlogBackend implements the Backend interface for logging to windows
// eventlog.
type EventlogBackend struct {
	// ID of the event to log to.
	eventID uint32
	// ident is the service's ident registered with eventlog.
	ident string
	// metrics is the eventlog metrics.
	metrics *sinkMetrics
	// registered is true if the backend is registered with eventlog.
	registered bool
}

// Stats returns the eventlog write counters.
func (eb *EventlogBackend) Stats() SinkStats {
	return eb.metrics.stats()
}
