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

package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rfkit/rflog"
)

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (sb *syncBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Write(p)
}

func (sb *syncBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.String()
}

func newTestLogger(t *testing.T, level rflog.Level) (*rflog.Logger, *syncBuffer) {
	t.Helper()

	console := &syncBuffer{}
	cfg := rflog.DefaultConfig()
	cfg.Level = level
	cfg.ConsoleWriter = console
	cfg.ErrorWriter = &syncBuffer{}
	cfg.PushTimeout = 5 * time.Second

	lg := rflog.New(cfg)
	t.Cleanup(lg.Shutdown)
	return lg, console
}

func TestEmit(t *testing.T) {
	lg, console := newTestLogger(t, rflog.TraceLevel)
	out := &syncBuffer{}

	err := newApp(lg, out).Run([]string{"rflogctl", "emit", "-l", "warning", "-c", "TEST", "hello", "world"})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	lg.Shutdown()

	if got, want := console.String(), "[WARNING] [TEST] hello world\n"; !strings.Contains(got, want) {
		t.Errorf("console output = %q, should contain: %q", got, want)
	}
}

func TestEmitThreshold(t *testing.T) {
	lg, console := newTestLogger(t, rflog.OffLevel)
	out := &syncBuffer{}
	app := newApp(lg, out)

	if err := app.Run([]string{"rflogctl", "emit", "filtered"}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "filtered by the OFF threshold") {
		t.Errorf("output = %q, should report the filtered entry", got)
	}

	if err := app.Run([]string{"rflogctl", "emit", "-t", "debug", "delivered"}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	lg.Shutdown()

	got := console.String()
	if strings.Contains(got, "filtered") {
		t.Errorf("console output = %q, the filtered entry must not be written", got)
	}
	if !strings.Contains(got, "[INFO] [CLI] delivered") {
		t.Errorf("console output = %q, should contain the delivered entry", got)
	}
}

func TestEmitErrors(t *testing.T) {
	lg, _ := newTestLogger(t, rflog.TraceLevel)

	tests := []struct {
		desc string
		args []string
	}{
		{"invalid_level", []string{"rflogctl", "emit", "-l", "loud", "foobar"}},
		{"invalid_threshold", []string{"rflogctl", "emit", "-t", "loud", "foobar"}},
		{"missing_message", []string{"rflogctl", "emit"}},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if err := newApp(lg, &syncBuffer{}).Run(tc.args); err == nil {
				t.Errorf("Run(%v) = nil, want: non-nil", tc.args)
			}
		})
	}
}

func TestStress(t *testing.T) {
	lg, console := newTestLogger(t, rflog.InfoLevel)
	out := &syncBuffer{}

	if err := newApp(lg, out).Run([]string{"rflogctl", "stress", "-n", "50", "-p", "3"}); err != nil {
		t.Fatalf("stress failed: %v", err)
	}
	lg.Shutdown()

	if got := out.String(); !strings.Contains(got, "sent 50 entries from 3 producers") {
		t.Errorf("output = %q, should report the sent entries", got)
	}

	if got := strings.Count(console.String(), "[INFO] [CLI] producer"); got != 50 {
		t.Errorf("console has %d entries, want: 50", got)
	}
}

func TestStressInvalidCount(t *testing.T) {
	lg, _ := newTestLogger(t, rflog.InfoLevel)
	if err := newApp(lg, &syncBuffer{}).Run([]string{"rflogctl", "stress", "-n", "0"}); err == nil {
		t.Error("stress -n 0 = nil, want: non-nil")
	}
}

func TestLevelsAndConfig(t *testing.T) {
	t.Setenv(rflog.EnvFileLevel, "chatty")

	lg, _ := newTestLogger(t, rflog.ErrorLevel)
	out := &syncBuffer{}
	app := newApp(lg, out)

	if err := app.Run([]string{"rflogctl", "levels"}); err != nil {
		t.Fatalf("levels failed: %v", err)
	}
	if err := app.Run([]string{"rflogctl", "config"}); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"TRACE(0)", "threshold: ERROR", "version: " + rflog.Version().String(), "sinks: console", "error: ", rflog.EnvFileLevel} {
		if !strings.Contains(got, want) {
			t.Errorf("output = %q, should contain: %q", got, want)
		}
	}
}
