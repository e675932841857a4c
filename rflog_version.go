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
	"fmt"
	"runtime"

	"github.com/blang/semver"
)

// version is the library version, it can be overridden at build time with
// -ldflags "-X github.com/rfkit/rflog.version=1.2.3".
var version = "1.0.0"

// fallbackVersion is reported when version isn't a valid semantic version.
var fallbackVersion = semver.Version{Major: 0, Minor: 0, Patch: 0, Pre: []semver.PRVersion{{VersionStr: "unknown"}}}

// Version returns the library version.
func Version() semver.Version {
	v, err := semver.Make(version)
	if err != nil {
		return fallbackVersion
	}
	return v
}

// systemInfo returns the startup banner: platform, toolchain and library
// version.
func systemInfo() string {
	return fmt.Sprintf("%s/%s; %s %s; rflog %s", runtime.GOOS, runtime.GOARCH, runtime.Compiler, runtime.Version(), Version())
}
