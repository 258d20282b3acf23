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

package indexer

import (
	"strconv"
	"strings"
)

var structuralTags = map[string]string{
	"section":    "Section",
	"div":        "Container",
	"header":     "Header",
	"footer":     "Footer",
	"article":    "Article",
	"aside":      "Sidebar",
	"nav":        "Navigation",
	"main":       "Main Content",
	"form":       "Form",
	"figure":     "Figure",
	"figcaption": "Caption",
	"details":    "Details",
	"summary":    "Summary",
	"dialog":     "Dialog",
}

var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"link":     true,
	"meta":     true,
	"head":     true,
	"title":    true,
	"base":     true,
	"noscript": true,
	"template": true,
}

var regionTags = map[string]bool{
	"section": true,
	"div":     true,
	"header":  true,
	"footer":  true,
	"article": true,
	"aside":   true,
	"nav":     true,
}

// IsStructural reports whether tag produces a node in the structural tree.
func IsStructural(tag string) bool {
	_, ok := structuralTags[strings.ToLower(tag)]
	return ok
}

// IsIgnored reports whether tag is skipped together with its whole subtree.
func IsIgnored(tag string) bool {
	return ignoredTags[strings.ToLower(tag)]
}

// IsRegion reports whether tag opens a region in region-grouping mode.
func IsRegion(tag string) bool {
	return regionTags[strings.ToLower(tag)]
}

// FriendlyName returns the display name for tag: a fixed name for structural
// tags, otherwise the capitalized tag.
func FriendlyName(tag string) string {
	tag = strings.ToLower(tag)
	if name, ok := structuralTags[tag]; ok {
		return name
	}
	if tag == "" {
		return ""
	}
	return strings.ToUpper(tag[:1]) + tag[1:]
}

// numberSiblings suffixes labels with a 1-based occurrence index when more
// than one node in nodes shares a tag.
func numberSiblings(nodes []*Node) {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.Tag]++
	}
	seen := make(map[string]int, len(counts))
	for _, n := range nodes {
		if counts[n.Tag] < 2 {
			continue
		}
		seen[n.Tag]++
		n.Label += " " + strconv.Itoa(seen[n.Tag])
	}
}

const maxRegionClasses = 2

// regionLabel renders tag#id.class1.class2 for region nodes.
func regionLabel(tag, id, class string) string {
	var b strings.Builder
	b.WriteString(tag)
	if id != "" {
		b.WriteByte('#')
		b.WriteString(id)
	}
	for i, c := range strings.Fields(class) {
		if i == maxRegionClasses {
			b.WriteString("…")
			break
		}
		b.WriteByte('.')
		b.WriteString(c)
	}
	return b.String()
}
