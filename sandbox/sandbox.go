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

// Package sandbox prepares captured HTML for rendering outside its origin
// and serializes the edited result back to a standalone document.
package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/agentberlin/webcloner/cssmin"
)

// DefaultBaselineScript is injected when a document does not reference jQuery.
const DefaultBaselineScript = "https://code.jquery.com/jquery-3.6.0.min.js"

// InjectedAttr marks nodes added by the sandbox. They are removed on export.
const InjectedAttr = "data-editor-injected"

// EditorAttrPrefix prefixes every attribute owned by the editor.
const EditorAttrPrefix = "data-editor-"

// ErrInvalidBaseURL is returned when the base URL cannot be parsed.
var ErrInvalidBaseURL = errors.New("invalid base url")

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Options control how a document is prepared.
type Options struct {
	// BaselineScript is the script injected when no jQuery reference is
	// present. Empty disables the injection.
	BaselineScript string
}

// DefaultOptions returns the options used by Load when none are given.
func DefaultOptions() Options {
	return Options{BaselineScript: DefaultBaselineScript}
}

// Handle owns one prepared document for the duration of an editing session.
type Handle struct {
	doc     *goquery.Document
	baseURL string

	readyOnce sync.Once
	ready     chan struct{}
}

// Load parses src, points it at baseURL and returns a Handle for it. Relative
// stylesheet and script references and url(...) references in inline CSS are
// made absolute. An empty baseURL leaves every reference untouched. Editor
// attributes already present in src are dropped so ids are only ever issued
// by the session indexing the document.
func Load(src, baseURL string, opts ...Options) (*Handle, error) {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	base := ""
	if strings.TrimSpace(baseURL) != "" {
		u, err := urlParser.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
		}
		base = u.Href(false)
	}

	root, err := htmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	stripEditorAttrs(root)
	doc := goquery.NewDocumentFromNode(root)

	h := &Handle{doc: doc, baseURL: base, ready: make(chan struct{})}
	head := h.head()
	if base != "" {
		setBase(root, head, base)
		absolutizeAssets(doc, base)
	}
	if o.BaselineScript != "" && !referencesJQuery(root) {
		injectScript(root, head, o.BaselineScript)
	}
	return h, nil
}

// Document returns the live document. Callers mutating it must hold
// whatever lock guards the Handle.
func (h *Handle) Document() *goquery.Document { return h.doc }

// Root returns the body element, the root of the structure tree.
func (h *Handle) Root() *html.Node {
	if body := h.doc.Find("body"); body.Length() > 0 {
		return body.Get(0)
	}
	return h.doc.Get(0)
}

// BaseURL returns the normalized base URL, or "" if none was given.
func (h *Handle) BaseURL() string { return h.baseURL }

// Ready is closed once the rendered context finished its initial load.
func (h *Handle) Ready() <-chan struct{} { return h.ready }

// MarkReady fires the ready signal. Only the first call has an effect.
func (h *Handle) MarkReady() {
	h.readyOnce.Do(func() { close(h.ready) })
}

// IsReady reports whether MarkReady has been called.
func (h *Handle) IsReady() bool {
	select {
	case <-h.ready:
		return true
	default:
		return false
	}
}

// Render returns the live document, including editor attributes and
// injected nodes, as loaded into the rendering context.
func (h *Handle) Render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>")
	if err := renderElements(&buf, h.doc.Get(0)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *Handle) head() *html.Node {
	if head := h.doc.Find("head"); head.Length() > 0 {
		return head.Get(0)
	}
	// html.Parse always synthesizes a head; this only guards documents
	// built by hand.
	htmlEl := h.doc.Find("html")
	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	if htmlEl.Length() > 0 {
		el := htmlEl.Get(0)
		el.InsertBefore(head, el.FirstChild)
	}
	return head
}

// renderElements writes every child of doc except doctype nodes.
func renderElements(buf *bytes.Buffer, doc *html.Node) error {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			continue
		}
		if err := html.Render(buf, c); err != nil {
			return err
		}
	}
	return nil
}

// setBase re-points the first <base> in head at base, removes any other
// <base> element, or inserts a new one as the first child of head.
func setBase(root, head *html.Node, base string) {
	first := htmlquery.FindOne(root, "//head/base")
	for _, extra := range htmlquery.Find(root, "//base") {
		if extra != first && extra.Parent != nil {
			extra.Parent.RemoveChild(extra)
		}
	}
	if first != nil {
		setAttr(first, "href", base)
		return
	}
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     "base",
		DataAtom: atom.Base,
		Attr:     []html.Attribute{{Key: "href", Val: base}},
	}
	head.InsertBefore(el, head.FirstChild)
}

func referencesJQuery(root *html.Node) bool {
	for _, n := range htmlquery.Find(root, "//script[@src]") {
		if strings.Contains(strings.ToLower(htmlquery.SelectAttr(n, "src")), "jquery") {
			return true
		}
	}
	return false
}

// injectScript adds src right after <base>, or first in head.
func injectScript(root, head *html.Node, src string) {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: InjectedAttr, Val: "baseline"},
		},
	}
	if base := htmlquery.FindOne(root, "//head/base"); base != nil {
		head.InsertBefore(el, base.NextSibling)
		return
	}
	head.InsertBefore(el, head.FirstChild)
}

// Resolve resolves ref against base the way a browser would.
func Resolve(base, ref string) (string, error) {
	u, err := urlParser.ParseRef(base, ref)
	if err != nil {
		return "", err
	}
	return u.Href(false), nil
}

func absolutizeAssets(doc *goquery.Document, base string) {
	resolve := func(ref string) (string, error) { return Resolve(base, ref) }

	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		if !isStylesheet(s.AttrOr("rel", "")) {
			return
		}
		rewriteAttr(s, "href", resolve)
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		rewriteAttr(s, "src", resolve)
	})
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				c.Data = cssmin.AbsolutizeURLs(c.Data, resolve)
			}
		}
	})
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style := s.AttrOr("style", "")
		if rewritten := cssmin.AbsolutizeURLs(style, resolve); rewritten != style {
			s.SetAttr("style", rewritten)
		}
	})
}

func isStylesheet(rel string) bool {
	for _, f := range strings.Fields(rel) {
		if strings.EqualFold(f, "stylesheet") {
			return true
		}
	}
	return false
}

func rewriteAttr(s *goquery.Selection, name string, resolve func(string) (string, error)) {
	ref := strings.TrimSpace(s.AttrOr(name, ""))
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return
	}
	if abs, err := resolve(ref); err == nil {
		s.SetAttr(name, abs)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
