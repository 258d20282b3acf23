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
	"strings"

	"github.com/gorilla/css/scanner"
)

// Declaration is one property/value pair of an inline style attribute.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations splits the content of a style attribute into
// declarations. Semicolons inside functions, strings and url() tokens do not
// split. Parsing stops at the first tokenizer error.
func ParseDeclarations(style string) []Declaration {
	var (
		decls   []Declaration
		prop    strings.Builder
		value   strings.Builder
		inValue bool
		depth   int
	)

	flush := func() {
		p := strings.ToLower(strings.TrimSpace(prop.String()))
		v := strings.TrimSpace(value.String())
		if p != "" && inValue {
			decls = append(decls, Declaration{Property: p, Value: v})
		}
		prop.Reset()
		value.Reset()
		inValue = false
	}

	s := scanner.New(style)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			flush()
			return decls
		}
		if tok.Type == scanner.TokenComment {
			continue
		}

		switch {
		case tok.Type == scanner.TokenFunction:
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == "(":
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == ")":
			if depth > 0 {
				depth--
			}
		case tok.Type == scanner.TokenChar && tok.Value == ";" && depth == 0:
			flush()
			continue
		case tok.Type == scanner.TokenChar && tok.Value == ":" && !inValue:
			inValue = true
			continue
		}

		if inValue {
			value.WriteString(tok.Value)
		} else {
			prop.WriteString(tok.Value)
		}
	}
}

// FormatDeclarations renders declarations back into style attribute text.
func FormatDeclarations(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// SetProperty returns style with property set to value, replacing an
// existing declaration in place or appending a new one. An empty value
// removes the property.
func SetProperty(style, property, value string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)

	decls := ParseDeclarations(style)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.Property != property {
			out = append(out, d)
			continue
		}
		if value != "" && !replaced {
			out = append(out, Declaration{Property: property, Value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, Declaration{Property: property, Value: value})
	}
	return FormatDeclarations(out)
}
