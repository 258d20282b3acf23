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

// Package studio converts a captured page into the project format loaded by
// the page-builder studio viewer: body markup, one CSS string and the lists
// of external stylesheets and scripts to load into its canvas.
package studio

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentberlin/webcloner/cssmin"
	"github.com/agentberlin/webcloner/sandbox"
)

// Project is the studio payload for one page.
type Project struct {
	URL     string   `json:"url"`
	HTML    string   `json:"html"`
	CSS     string   `json:"css"`
	Styles  []string `json:"styles"`
	Scripts []string `json:"scripts"`
	// Warnings lists recoverable problems, such as CSS that had to be
	// repaired or passed through unminified.
	Warnings []string `json:"warnings,omitempty"`
}

// Options control project building.
type Options struct {
	// BaselineScript is loaded first when the page does not load jQuery.
	// Empty disables it.
	BaselineScript string
}

// BuildProject extracts a studio project from src. Relative references are
// resolved against pageURL.
func BuildProject(src, pageURL string, opts ...Options) (*Project, error) {
	o := Options{BaselineScript: sandbox.DefaultBaselineScript}
	if len(opts) > 0 {
		o = opts[0]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	p := &Project{URL: pageURL, Styles: []string{}, Scripts: []string{}}

	resolve := func(ref string) (string, error) {
		if pageURL == "" {
			return ref, nil
		}
		return sandbox.Resolve(pageURL, ref)
	}

	var css []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			css = append(css, cssmin.AbsolutizeURLs(text, resolve))
		}
	})
	minified, err := cssmin.Safe(strings.Join(css, "\n"))
	if err != nil {
		p.Warnings = append(p.Warnings, err.Error())
	}
	p.CSS = minified

	seen := make(map[string]bool)
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		if !isStylesheet(s.AttrOr("rel", "")) {
			return
		}
		if href, ok := absolute(s.AttrOr("href", ""), resolve); ok && !seen[href] {
			seen[href] = true
			p.Styles = append(p.Styles, href)
		}
	})

	hasJQuery := false
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, ok := absolute(s.AttrOr("src", ""), resolve)
		if !ok || seen[src] {
			return
		}
		seen[src] = true
		if strings.Contains(strings.ToLower(src), "jquery") {
			hasJQuery = true
		}
		p.Scripts = append(p.Scripts, src)
	})
	if !hasJQuery && o.BaselineScript != "" {
		p.Scripts = append([]string{o.BaselineScript}, p.Scripts...)
	}

	body := doc.Find("body")
	body.Find("script, style, link[rel~=stylesheet]").Remove()
	html, err := body.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render body: %w", err)
	}
	p.HTML = strings.TrimSpace(html)
	return p, nil
}

func isStylesheet(rel string) bool {
	for _, f := range strings.Fields(rel) {
		if strings.EqualFold(f, "stylesheet") {
			return true
		}
	}
	return false
}

func absolute(ref string, resolve func(string) (string, error)) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	abs, err := resolve(ref)
	if err != nil || abs == "" {
		return "", false
	}
	return abs, true
}
