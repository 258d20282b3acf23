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

package editor

import (
	"github.com/agentberlin/webcloner/indexer"
)

// TreeNode is a structure tree row as displayed by the editor panel.
type TreeNode struct {
	ID           string      `json:"id"`
	Tag          string      `json:"tagName"`
	Label        string      `json:"label"`
	IsStructural bool        `json:"isMajor"`
	Expanded     bool        `json:"expanded"`
	Locked       bool        `json:"locked"`
	Selected     bool        `json:"selected"`
	Hovered      bool        `json:"hovered"`
	Children     []*TreeNode `json:"children"`
}

// Tree returns a copy of the current structure tree.
func (s *Session) Tree() ([]*indexer.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return nil, err
	}
	return cloneNodes(s.tree), nil
}

// View returns the structure tree decorated with expand, lock, selection
// and hover state. Nodes are expanded unless collapsed explicitly.
func (s *Session) View() ([]*TreeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return nil, err
	}
	return s.viewLocked(s.tree), nil
}

// Regions returns the region-grouped tree of the current document,
// regardless of the configured tree mode.
func (s *Session) Regions() (*TreeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return nil, err
	}
	root := s.ix.Regions(s.handle.Root())
	return s.viewLocked([]*indexer.Node{root})[0], nil
}

func (s *Session) viewLocked(nodes []*indexer.Node) []*TreeNode {
	out := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &TreeNode{
			ID:           n.ID,
			Tag:          n.Tag,
			Label:        n.Label,
			IsStructural: n.IsStructural,
			Expanded:     !s.collapsed[n.ID],
			Locked:       s.locks[n.ID],
			Selected:     n.ID == s.selected,
			Hovered:      n.ID == s.hovered,
			Children:     s.viewLocked(n.Children),
		})
	}
	return out
}

// ToggleExpand flips the expand state of a tree node and returns the new
// state.
func (s *Session) ToggleExpand(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return false, s.fail("expand", id, err)
	}
	if n, _ := indexer.Lookup(s.tree, id); n == nil {
		return false, s.fail("expand", id, ErrUnknownElement)
	}
	if s.collapsed[id] {
		delete(s.collapsed, id)
		return true, nil
	}
	s.collapsed[id] = true
	return false, nil
}

// ToggleLock flips the lock flag of an indexed element and returns the new
// state.
func (s *Session) ToggleLock(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return false, s.fail("lock", id, err)
	}
	if indexer.Find(s.handle.Root(), id) == nil {
		return false, s.fail("lock", id, ErrUnknownElement)
	}
	if s.locks[id] {
		delete(s.locks, id)
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

// Locked returns the ids of locked elements in document order.
func (s *Session) Locked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.locks))
	if s.handle == nil {
		return ids
	}
	for _, el := range indexer.Elements(s.handle.Root()) {
		if id := indexer.ID(el); s.locks[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// expandPathLocked expands every ancestor of id in the tree.
func (s *Session) expandPathLocked(id string) {
	_, path := indexer.Lookup(s.tree, id)
	for _, ancestor := range path {
		delete(s.collapsed, ancestor)
	}
}

func cloneNodes(nodes []*indexer.Node) []*indexer.Node {
	out := make([]*indexer.Node, 0, len(nodes))
	for _, n := range nodes {
		c := *n
		c.Children = cloneNodes(n.Children)
		out = append(out, &c)
	}
	return out
}
