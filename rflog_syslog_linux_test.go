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
	"log/syslog"
	"strings"
	"testing"
	"time"
)

func TestSyslog(t *testing.T) {
	if _, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "test"); err != nil {
		t.Skipf("syslog not found, skipping test: %v", err)
	}

	lg, _ := newTestLogger(t)
	lg.SetLevel(DebugLevel)
	be, err := NewSyslogBackend("rflog-test")
	if err != nil {
		t.Fatalf("NewSyslogBackend() failed: %v", err)
	}

	// Only the entries of this test are counted.
	lg.AddSink(SyslogSinkKey, func(entry LogEntry) {
		if entry.Component == testComponent {
			be.Log(entry)
		}
	})

	tests := []struct {
		desc string
		fn   func(component string, args ...any)
	}{
		{
			desc: "debug",
			fn:   lg.Debug,
		},
		{
			desc: "info",
			fn:   lg.Info,
		},
		{
			desc: "warn",
			fn:   lg.Warn,
		},
		{
			desc: "error",
			fn:   lg.Error,
		},
	}

	for writtenEntries, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			tc.fn(testComponent, "foobar")
			success := false
			var stats SinkStats
			// retry for 1 second
			for i := 0; i < 100; i++ {
				stats = be.Stats()
				success = stats.Success == int64(writtenEntries+1)
				if success {
					break
				}

				time.Sleep(10 * time.Millisecond)
			}

			if stats.Errors != 0 {
				t.Errorf("got errors %d, want 0. Errors: \n%s\n", stats.Errors, strings.Join(stats.ErrorMsgs, "\n"))
			}

			if !success {
				t.Errorf("got success %d, want %d", stats.Success, writtenEntries+1)
			}
		})
	}
}
