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

package sandbox

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var metaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset`)

// Decode converts raw HTML to a UTF-8 string. The charset comes from
// contentType, then from a <meta> declaration, then from statistical
// detection.
func Decode(raw []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	if !strings.Contains(ct, "charset") && !metaCharset.Match(firstKB(raw)) {
		if r, err := chardet.NewTextDetector().DetectBest(raw); err == nil && r.Charset != "" {
			ct = "text/html; charset=" + r.Charset
		}
	}
	if ct == "" {
		ct = "text/html"
	}
	if strings.Contains(ct, "utf-8") || strings.Contains(ct, "utf8") {
		return string(raw), nil
	}

	r, err := charset.NewReader(bytes.NewReader(raw), ct)
	if err != nil {
		return "", fmt.Errorf("failed to decode html: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode html: %w", err)
	}
	return string(out), nil
}

func firstKB(b []byte) []byte {
	if len(b) > 1024 {
		return b[:1024]
	}
	return b
}
