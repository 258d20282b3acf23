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
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kennygrant/sanitize"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Serialize returns a standalone copy of the live document: editor
// attributes and injected nodes are removed, a <base href=baseURL> is
// guaranteed at the front of head, and a doctype is prepended. The live
// document is not modified.
func Serialize(h *Handle, baseURL string) (string, error) {
	if h == nil {
		return "", fmt.Errorf("serialize: nil handle")
	}
	live, err := h.Render()
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	root, err := html.Parse(strings.NewReader(live))
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("[" + InjectedAttr + "]").Remove()
	stripEditorAttrs(root)

	if baseURL == "" {
		baseURL = h.BaseURL()
	}
	if baseURL != "" && doc.Find("head base[href]").Length() == 0 {
		head := doc.Find("head").Get(0)
		head.InsertBefore(&html.Node{
			Type:     html.ElementNode,
			Data:     "base",
			DataAtom: atom.Base,
			Attr:     []html.Attribute{{Key: "href", Val: baseURL}},
		}, head.FirstChild)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	if err := renderElements(&buf, root); err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	return buf.String(), nil
}

func stripEditorAttrs(n *html.Node) {
	if n.Type == html.ElementNode && len(n.Attr) > 0 {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !strings.HasPrefix(a.Key, EditorAttrPrefix) {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stripEditorAttrs(c)
	}
}

// DownloadName returns a file system safe name for an export of pageURL.
func DownloadName(pageURL string) string {
	name := "cloned-page"
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		name = u.Host
		if p := strings.Trim(u.Path, "/"); p != "" {
			name += "-" + strings.ReplaceAll(p, "/", "-")
		}
	}
	return sanitize.BaseName(name) + ".html"
}
