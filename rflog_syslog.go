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
	// syslogFormat is the template used to render syslog messages, syslog
	// adds its own timestamp.
	syslogFormat = "[{{.Component}}] ({{.Filename}}:{{.Line}}) {{.Message}}"
)

// SyslogBackend is a Backend implementation for logging to the system log.
type SyslogBackend struct {
	// ident is the syslog entry ident, it's passed down to the syslog writer.
	ident string
	// metrics is the syslog metrics.
	metrics *sinkMetrics
}

// Stats returns the syslog write counters.
func (sb *SyslogBackend) Stats() SinkStats {
	return sb.metrics.stats()
}
