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
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := newRegistry()

	var calls []string
	sink := func(name string) SinkFunc {
		return func(LogEntry) { calls = append(calls, name) }
	}

	r.add("warning", WarningLevel, sink("warning"), nil)
	r.add("debug", DebugLevel, sink("debug"), nil)
	r.add("error", ErrorLevel, sink("error"), nil)

	if got, want := r.keys(), []string{"debug", "error", "warning"}; !slices.Equal(got, want) {
		t.Errorf("keys() = %v, want: %v", got, want)
	}

	tests := []struct {
		level Level
		want  []string
	}{
		{TraceLevel, nil},
		{DebugLevel, []string{"debug"}},
		{WarningLevel, []string{"debug", "warning"}},
		{FatalLevel, []string{"debug", "error", "warning"}},
	}

	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			calls = nil
			for _, fn := range r.matching(tc.level) {
				fn(LogEntry{})
			}
			if !slices.Equal(calls, tc.want) {
				t.Errorf("matching(%s) called %v, want: %v", tc.level, calls, tc.want)
			}
		})
	}

	r.setLevel("error", TraceLevel)
	if got, found := r.level("error"); !found || got != TraceLevel {
		t.Errorf("level(error) = (%s, %t), want: (%s, true)", got, found, TraceLevel)
	}

	calls = nil
	for _, fn := range r.matching(TraceLevel) {
		fn(LogEntry{})
	}
	if want := []string{"error"}; !slices.Equal(calls, want) {
		t.Errorf("matching(%s) called %v after setLevel(), want: %v", TraceLevel, calls, want)
	}

	r.setLevel("missing", TraceLevel)
	if _, found := r.level("missing"); found {
		t.Error("setLevel() created a missing key")
	}

	r.remove("debug")
	r.remove("missing")
	if got, want := r.keys(), []string{"error", "warning"}; !slices.Equal(got, want) {
		t.Errorf("keys() = %v, want: %v", got, want)
	}

	r.clear()
	if got := r.keys(); len(got) != 0 {
		t.Errorf("keys() = %v after clear(), want: []", got)
	}
}

func TestRegistryClosers(t *testing.T) {
	r := newRegistry()

	first := &closerBackend{captureSink: newCaptureSink(testComponent)}
	second := &closerBackend{captureSink: newCaptureSink(testComponent)}
	third := &closerBackend{captureSink: newCaptureSink(testComponent)}

	r.add("sink", TraceLevel, first.Log, first)
	r.add("sink", TraceLevel, second.Log, second)
	r.add("other", TraceLevel, third.Log, third)

	if got := first.closeCount(); got != 1 {
		t.Errorf("overwritten closer closed %d times, want: 1", got)
	}

	r.remove("sink")
	if got := second.closeCount(); got != 1 {
		t.Errorf("removed closer closed %d times, want: 1", got)
	}

	r.clear()
	if got := third.closeCount(); got != 1 {
		t.Errorf("cleared closer closed %d times, want: 1", got)
	}
}
