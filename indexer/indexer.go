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

// Package indexer projects a parsed HTML document into the labeled tree shown
// by the structure editor. The document is the source of truth: the only
// mutation performed is tagging elements with a stable id attribute, and the
// tree can be rebuilt at any time after the document changes.
package indexer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Attr is the attribute holding an element's editor id.
const Attr = "data-editor-id"

// RootID and RootLabel name the synthetic root of a region tree.
const (
	RootID    = "region-root"
	RootLabel = "Document Body"
)

// Node is one entry of the structure tree. It refers to its element by ID
// only; use Find to resolve the element when needed.
type Node struct {
	ID           string  `json:"id"`
	Tag          string  `json:"tagName"`
	Label        string  `json:"label"`
	Children     []*Node `json:"children"`
	IsStructural bool    `json:"isMajor"`
}

// Mode selects how elements are grouped into tree nodes.
type Mode int

const (
	// ModeStructural emits nodes for structural tags only and flattens
	// everything else up to the nearest structural ancestor.
	ModeStructural Mode = iota
	// ModeRegions emits every element, grouped under its nearest region.
	ModeRegions
)

func (m Mode) String() string {
	switch m {
	case ModeStructural:
		return "structural"
	case ModeRegions:
		return "regions"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structural":
		return ModeStructural, nil
	case "regions", "region":
		return ModeRegions, nil
	}
	return ModeStructural, fmt.Errorf("unknown tree mode %q", s)
}

// Indexer builds trees and tags elements with ids from its generator.
type Indexer struct {
	ids  IDGenerator
	mode Mode
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithMode sets the grouping mode used by Tree.
func WithMode(m Mode) Option {
	return func(ix *Indexer) { ix.mode = m }
}

// New returns an Indexer issuing ids from ids. A nil generator gets a fresh
// Sequence.
func New(ids IDGenerator, opts ...Option) *Indexer {
	if ids == nil {
		ids = NewSequence("")
	}
	ix := &Indexer{ids: ids}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Mode returns the configured grouping mode.
func (ix *Indexer) Mode() Mode { return ix.mode }

// Tree builds the tree for root using the configured mode.
func (ix *Indexer) Tree(root *html.Node) []*Node {
	if ix.mode == ModeRegions {
		return []*Node{ix.Regions(root)}
	}
	return ix.BuildTree(root)
}

// BuildTree returns the structural nodes below root in document order.
// Every visited element is tagged with an id if it has none. Ignored
// elements are skipped together with their subtree. A root without
// structural descendants yields an empty, non-nil slice.
func (ix *Indexer) BuildTree(root *html.Node) []*Node {
	nodes := []*Node{}
	if root == nil {
		return nodes
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || IsIgnored(c.Data) {
			continue
		}
		id := ix.ensureID(c)
		if !IsStructural(c.Data) {
			nodes = append(nodes, ix.BuildTree(c)...)
			continue
		}
		nodes = append(nodes, &Node{
			ID:           id,
			Tag:          c.Data,
			Label:        FriendlyName(c.Data),
			Children:     ix.BuildTree(c),
			IsStructural: true,
		})
	}
	numberSiblings(nodes)
	return nodes
}

// Regions returns a single root node standing for root whose descendants
// are every non-ignored element, each placed under its nearest region
// ancestor. Region nodes are labeled tag#id.class.
func (ix *Indexer) Regions(root *html.Node) *Node {
	top := &Node{ID: RootID, Tag: "body", Label: RootLabel, Children: []*Node{}, IsStructural: true}
	if root != nil {
		ix.collectRegions(root, top)
	}
	return top
}

func (ix *Indexer) collectRegions(n *html.Node, region *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || IsIgnored(c.Data) {
			continue
		}
		id := ix.ensureID(c)
		node := &Node{ID: id, Tag: c.Data, Children: []*Node{}}
		if IsRegion(c.Data) {
			node.IsStructural = true
			node.Label = regionLabel(c.Data, attr(c, "id"), attr(c, "class"))
			region.Children = append(region.Children, node)
			ix.collectRegions(c, node)
			continue
		}
		node.Label = FriendlyName(c.Data)
		region.Children = append(region.Children, node)
		ix.collectRegions(c, region)
	}
}

func (ix *Indexer) ensureID(n *html.Node) string {
	if id := ID(n); id != "" {
		return id
	}
	id := ix.ids.Next()
	n.Attr = append(n.Attr, html.Attribute{Key: Attr, Val: id})
	return id
}

// ID returns the editor id of n, or "" when it has not been indexed.
func ID(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return attr(n, Attr)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Find resolves id to the element carrying it below root, or nil.
func Find(root *html.Node, id string) *html.Node {
	if root == nil || id == "" {
		return nil
	}
	sel := goquery.NewDocumentFromNode(root).Find(Selector(id))
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// Selector returns a CSS attribute selector matching the element with id.
func Selector(id string) string {
	return fmt.Sprintf(`[%s=%q]`, Attr, id)
}

// Elements returns every element below root that carries an editor id, in
// document order.
func Elements(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	return goquery.NewDocumentFromNode(root).Find("[" + Attr + "]").Nodes
}

// Walk visits nodes depth first in tree order. Returning false from fn
// skips the children of that node.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Lookup returns the node with id and the path of ancestor ids leading to
// it, or nil when absent.
func Lookup(nodes []*Node, id string) (*Node, []string) {
	for _, n := range nodes {
		if n.ID == id {
			return n, nil
		}
		if found, path := Lookup(n.Children, id); found != nil {
			return found, append([]string{n.ID}, path...)
		}
	}
	return nil, nil
}
