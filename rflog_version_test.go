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
	"runtime"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		desc    string
		version string
		want    string
	}{
		{"release", "1.2.3", "1.2.3"},
		{"prerelease", "2.0.0-rc.1", "2.0.0-rc.1"},
		{"invalid", "not-a-version", "0.0.0-unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			prev := version
			version = tc.version
			t.Cleanup(func() { version = prev })

			if got := Version().String(); got != tc.want {
				t.Errorf("Version() = %q, want: %q", got, tc.want)
			}
		})
	}
}

func TestSystemInfo(t *testing.T) {
	got := systemInfo()
	for _, want := range []string{runtime.GOOS + "/" + runtime.GOARCH, runtime.Version(), "rflog " + Version().String()} {
		if !strings.Contains(got, want) {
			t.Errorf("systemInfo() = %q, should contain: %q", got, want)
		}
	}
}
