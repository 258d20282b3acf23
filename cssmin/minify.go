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

// Package cssmin minifies and rewrites CSS text using the gorilla/css
// tokenizer. It never interprets rules; it only drops comments and
// whitespace that carry no meaning, so the output is equivalent to the input.
package cssmin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// ParseError reports CSS that could not be tokenized or whose blocks are
// unbalanced.
type ParseError struct {
	Line     int
	Column   int
	Msg      string
	Unclosed int // number of blocks still open at end of input
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("css: %s (line %d, column %d)", e.Msg, e.Line, e.Column)
}

// Minify removes comments and redundant whitespace and drops the last
// semicolon of every block. It fails on unterminated strings or comments and
// on unbalanced braces.
func Minify(css string) (string, error) {
	out := make([]byte, 0, len(css))
	s := scanner.New(css)
	depth := 0
	pendingSpace := false
	// decl[i] reports whether block i holds declarations rather than rules.
	var decl []bool
	stmtStart := 0

	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if depth > 0 {
				return "", &ParseError{
					Line:     tok.Line,
					Column:   tok.Column,
					Msg:      fmt.Sprintf("%d unclosed block(s)", depth),
					Unclosed: depth,
				}
			}
			return string(out), nil
		case scanner.TokenError:
			return "", &ParseError{Line: tok.Line, Column: tok.Column, Msg: tok.Value}
		case scanner.TokenS, scanner.TokenComment:
			// A comment separates tokens exactly like whitespace does.
			pendingSpace = true
			continue
		case scanner.TokenBOM, scanner.TokenCDO, scanner.TokenCDC:
			continue
		}

		v := tok.Value
		if tok.Type == scanner.TokenChar {
			switch v {
			case "{":
				depth++
				decl = append(decl, declarationBlock(string(out[stmtStart:])))
			case "}":
				depth--
				if depth < 0 {
					return "", &ParseError{Line: tok.Line, Column: tok.Column, Msg: "unexpected }"}
				}
				decl = decl[:len(decl)-1]
				if n := len(out); n > 0 && out[n-1] == ';' {
					out = out[:n-1]
				}
			}
		}

		inDecl := len(decl) > 0 && decl[len(decl)-1]
		if pendingSpace && len(out) > 0 && needsSpace(out[len(out)-1], v[0]) && !(inDecl && v[0] == ':') {
			out = append(out, ' ')
		}
		pendingSpace = false
		out = append(out, v...)
		if tok.Type == scanner.TokenChar && (v == "{" || v == "}" || v == ";") {
			stmtStart = len(out)
		}
	}
}

// declarationBlock reports whether a block opened after prelude holds
// declarations. Grouping at-rules such as @media hold nested rules.
func declarationBlock(prelude string) bool {
	prelude = strings.TrimSpace(prelude)
	if !strings.HasPrefix(prelude, "@") {
		return true
	}
	name := strings.ToLower(strings.TrimPrefix(prelude, "@"))
	if i := strings.IndexAny(name, " (\t"); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "font-face", "page", "counter-style", "property", "viewport", "font-palette-values":
		return true
	}
	return false
}

// needsSpace reports whether whitespace between prev and next is significant.
// Spaces around '+', '-' and '~' are kept because calc() depends on them.
func needsSpace(prev, next byte) bool {
	if strings.IndexByte("{};,>(:", prev) >= 0 {
		return false
	}
	return strings.IndexByte("{};,>)!", next) < 0
}

// Safe minifies css and recovers from unbalanced blocks by appending the
// missing closing braces. If the repaired text still does not parse the input
// is returned unchanged. The first parse error is always returned so callers
// can report it; the string result is usable either way.
func Safe(css string) (string, error) {
	if strings.TrimSpace(css) == "" {
		return "", nil
	}

	out, err := Minify(css)
	if err == nil {
		return out, nil
	}

	var perr *ParseError
	if errors.As(err, &perr) && perr.Unclosed > 0 {
		if fixed, ferr := Minify(css + strings.Repeat("}", perr.Unclosed)); ferr == nil {
			return fixed, err
		}
	}
	return css, err
}
