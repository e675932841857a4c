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

import (
	"testing"
)

func TestNoopSyslog(t *testing.T) {
	be, err := NewSyslogBackend("test_ident")
	if err != nil {
		t.Fatalf("NewSyslogBackend() = %v, want nil", err)
	}

	lg, _ := newTestLogger(t)
	lg.AddBackend(SyslogSinkKey, be)
	lg.Error(testComponent, "foobar")
	lg.Shutdown()

	if stats := be.Stats(); stats.Success != 0 || stats.Errors != 0 {
		t.Errorf("Stats() = %+v, want no writes", stats)
	}
}
