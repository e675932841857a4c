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

//go:build windows

package rflog

import (
	"strings"
	"testing"
	"time"
)

func TestEventlog(t *testing.T) {
	lg, _ := newTestLogger(t)
	withDefault(t, lg)
	SetLevel(DebugLevel)

	tests := []struct {
		desc string
		fn   func(component string, args ...any)
	}{
		{
			desc: "debug",
			fn:   Debug,
		},
		{
			desc: "info",
			fn:   Info,
		},
		{
			desc: "warn",
			fn:   Warn,
		},
		{
			desc: "error",
			fn:   Error,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			be, err := NewEventlogBackend(DefaultEventlogEventID, "rflog-test")
			if err != nil {
				t.Fatalf("NewEventlogBackend() failed: %v", err)
			}

			AddSink(EventlogSinkKey, func(entry LogEntry) {
				if entry.Component == testComponent {
					be.Log(entry)
				}
			})
			SetSinkLevel(EventlogSinkKey, DebugLevel)

			test.fn(testComponent, "foobar")
			// The event log backend takes a while to set up, so keep waiting until
			// it's successful.
			start := time.Now()
			for be.Stats().Success != 1 {
				if time.Since(start) >= 5*time.Second {
					t.Fatalf("Timed out waiting for event log, errors: %s", strings.Join(be.Stats().ErrorMsgs, "\n"))
				}
				time.Sleep(10 * time.Millisecond)
			}
			RemoveSink(EventlogSinkKey)
		})
	}
}
