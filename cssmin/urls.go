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

package cssmin

import (
	"regexp"
	"strings"

	"github.com/gorilla/css/scanner"
)

// absoluteRef matches references that must not be resolved against a base.
var absoluteRef = regexp.MustCompile(`(?i)^(data:|https?:|//|#)`)

// AbsolutizeURLs rewrites every relative url(...) reference in css using
// resolve. References that are already absolute, protocol-relative, data:
// URIs or fragment-only are left alone, as are references resolve rejects.
// Text that does not tokenize is returned unchanged.
func AbsolutizeURLs(css string, resolve func(ref string) (string, error)) string {
	if css == "" || !strings.Contains(strings.ToLower(css), "url(") {
		return css
	}

	var b strings.Builder
	b.Grow(len(css))
	s := scanner.New(css)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return b.String()
		case scanner.TokenError:
			return css
		case scanner.TokenURI:
			ref := uriRef(tok.Value)
			if ref == "" || absoluteRef.MatchString(ref) {
				b.WriteString(tok.Value)
				continue
			}
			abs, err := resolve(ref)
			if err != nil || abs == "" {
				b.WriteString(tok.Value)
				continue
			}
			b.WriteString(formatURI(abs))
		default:
			b.WriteString(tok.Value)
		}
	}
}

// uriRef extracts the reference from a url(...) token.
func uriRef(tok string) string {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return ""
	}
	inner := strings.TrimSpace(tok[open+1 : len(tok)-1])
	if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
		inner = inner[1 : n-1]
	}
	return strings.TrimSpace(inner)
}

func formatURI(ref string) string {
	if strings.ContainsAny(ref, " ()'\"\\") {
		return `url("` + strings.ReplaceAll(ref, `"`, `\"`) + `")`
	}
	return "url(" + ref + ")"
}
