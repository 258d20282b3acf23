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
	"regexp"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var (
	schemePrefix = regexp.MustCompile(`(?i)^https?://`)
	urlParser    = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())
)

// ValidateURL checks that raw is an absolute http(s) URL with a host and
// returns its normalized form. Failures wrap ErrInvalidURL.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !schemePrefix.MatchString(raw) {
		return "", &Error{URL: raw, Op: "validate", Err: ErrInvalidURL}
	}
	u, err := urlParser.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", &Error{URL: raw, Op: "validate", Err: ErrInvalidURL}
	}
	return u.Href(false), nil
}
