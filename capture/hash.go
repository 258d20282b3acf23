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
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
)

var (
	commentPattern    = regexp.MustCompile(`<!--[\s\S]*?-->`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// HashConfig controls how content is normalized before hashing.
type HashConfig struct {
	// ExcludeTags are removed before hashing.
	ExcludeTags        []string
	StripComments      bool
	CollapseWhitespace bool
}

// DefaultHashConfig ignores scripts, styles, comments and whitespace so
// pages that only differ in inline tracking code hash alike.
func DefaultHashConfig() *HashConfig {
	return &HashConfig{
		ExcludeTags:        []string{"script", "style", "noscript"},
		StripComments:      true,
		CollapseWhitespace: true,
	}
}

// NormalizeContent applies config to html.
func NormalizeContent(html []byte, config *HashConfig) ([]byte, error) {
	if config == nil {
		config = DefaultHashConfig()
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	for _, tag := range config.ExcludeTags {
		doc.Find(tag).Remove()
	}
	content, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	out := []byte(content)
	if config.StripComments {
		out = commentPattern.ReplaceAll(out, nil)
	}
	if config.CollapseWhitespace {
		out = whitespacePattern.ReplaceAll(bytes.TrimSpace(out), []byte(" "))
	}
	return out, nil
}

// ComputeContentHash hashes content with algorithm: xxhash (default), md5
// or sha256.
func ComputeContentHash(content []byte, algorithm string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("content is empty")
	}

	switch strings.ToLower(algorithm) {
	case "xxhash", "":
		return fmt.Sprintf("%016x", xxhash.Sum64(content)), nil
	case "md5":
		hash := md5.Sum(content)
		return hex.EncodeToString(hash[:]), nil
	case "sha256":
		hash := sha256.Sum256(content)
		return hex.EncodeToString(hash[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s (supported: xxhash, md5, sha256)", algorithm)
	}
}

// ContentHash normalizes html with the default config and hashes it.
func ContentHash(html []byte, algorithm string) (string, error) {
	normalized, err := NormalizeContent(html, nil)
	if err != nil {
		return "", fmt.Errorf("failed to normalize content: %w", err)
	}
	return ComputeContentHash(normalized, algorithm)
}
