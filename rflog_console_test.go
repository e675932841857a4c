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
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

const (
	writeFailure int = iota
	writeLenFailure
)

type errorWriter struct {
	failureType int
}

func (ew errorWriter) Write(data []byte) (int, error) {
	if ew.failureType == writeFailure {
		return 0, fmt.Errorf("injected write error")
	} else if ew.failureType == writeLenFailure {
		return 0, nil
	}
	return len(data), nil
}

func newTestEntry(level Level, msg string) LogEntry {
	return LogEntry{
		When:      time.Date(2024, time.January, 2, 3, 4, 5, 6000, time.UTC),
		Level:     level,
		File:      "/src/radio/tuner.go",
		Line:      42,
		Component: testComponent,
		ThreadID:  42,
		Message:   msg,
	}
}

func TestConsoleWriteFailure(t *testing.T) {
	tests := []struct {
		desc        string
		failureType int
	}{
		{"write_error", writeFailure},
		{"short_write", writeLenFailure},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			be := NewConsoleBackend(&errorWriter{failureType: tc.failureType}, ConsoleOptions{})
			be.Log(newTestEntry(ErrorLevel, "foobar"))

			stats := be.Stats()
			if stats.Errors != 1 || stats.Success != 0 {
				t.Fatalf("Stats() = %+v, want 1 error and 0 successes", stats)
			}
			if len(stats.ErrorMsgs) != 1 {
				t.Errorf("len(Stats().ErrorMsgs) = %d, want: 1", len(stats.ErrorMsgs))
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	tests := []struct {
		desc string
		opts ConsoleOptions
		want string
	}{
		{
			desc: "minimal",
			opts: ConsoleOptions{},
			want: "[ERROR] [TEST] foo bar\n",
		},
		{
			desc: "time",
			opts: ConsoleOptions{Time: true},
			want: "[2024-Jan-02 03:04:05.000006] [ERROR] [TEST] foo bar\n",
		},
		{
			desc: "thread",
			opts: ConsoleOptions{Thread: true},
			want: "[0x2a] [ERROR] [TEST] foo bar\n",
		},
		{
			desc: "source",
			opts: ConsoleOptions{Source: true},
			want: "[tuner.go:42] [ERROR] [TEST] foo bar\n",
		},
		{
			desc: "all",
			opts: ConsoleOptions{Color: true, Time: true, Thread: true, Source: true},
			want: "[2024-Jan-02 03:04:05.000006] [0x2a] [tuner.go:42] [ERROR] [TEST] foo bar\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			logBuffer := bytes.NewBuffer(nil)
			be := NewConsoleBackend(logBuffer, tc.opts)
			be.Log(newTestEntry(ErrorLevel, "foo bar"))

			if got := logBuffer.String(); got != tc.want {
				t.Errorf("Log() wrote %q, want: %q", got, tc.want)
			}

			if stats := be.Stats(); stats.Success != 1 || stats.Errors != 0 {
				t.Errorf("Stats() = %+v, want 1 success and 0 errors", stats)
			}
		})
	}
}

func TestConsoleNoColorOffTerminal(t *testing.T) {
	be := NewConsoleBackend(bytes.NewBuffer(nil), ConsoleOptions{Color: true})
	if be.colors != nil {
		t.Errorf("colors enabled for a writer that isn't a terminal")
	}
}

func TestConsoleColors(t *testing.T) {
	logBuffer := bytes.NewBuffer(nil)
	be := NewConsoleBackend(logBuffer, ConsoleOptions{})

	red := color.New(color.FgRed)
	red.EnableColor()
	be.colors = map[Level]*color.Color{ErrorLevel: red}

	be.Log(newTestEntry(ErrorLevel, "foo bar"))
	be.Log(newTestEntry(InfoLevel, "foo bar"))

	lines := strings.Split(strings.TrimSpace(logBuffer.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Log() wrote %d lines, want: 2", len(lines))
	}

	if !strings.HasPrefix(lines[0], "\x1b[31m[ERROR] [TEST]") {
		t.Errorf("error line = %q, want a red prefix", lines[0])
	}

	if !strings.HasSuffix(lines[0], "\x1b[0m foo bar") {
		t.Errorf("error line = %q, the message must not be colored", lines[0])
	}

	if lines[1] != "[INFO] [TEST] foo bar" {
		t.Errorf("info line = %q, want: %q", lines[1], "[INFO] [TEST] foo bar")
	}
}
