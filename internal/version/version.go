// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package version holds the build version, overridden at link time with
// -ldflags "-X github.com/agentberlin/webcloner/internal/version.CurrentVersion=v1.2.3".
package version

import "runtime"

// CurrentVersion is the released version of the binaries.
var CurrentVersion = "v0.1.0"

// GoVersion returns the toolchain the binary was built with.
func GoVersion() string {
	return runtime.Version()
}
