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

package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL rejects targets that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid url: must start with http:// or https://")
	// ErrBlockedHost rejects hosts matching a configured blocked pattern.
	ErrBlockedHost = errors.New("host is blocked")
	// ErrDisallowedByRobots rejects URLs the site's robots.txt disallows.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
	// ErrNavigationTimeout is returned when the page did not settle in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrNavigation carries the browser's own navigation failure text.
	ErrNavigation = errors.New("navigation failed")
)

// Error is a failed capture. It always names the URL that was requested.
type Error struct {
	URL string
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capture %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by the request rather than
// by the capture itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrBlockedHost) || errors.Is(err, ErrDisallowedByRobots)
}
