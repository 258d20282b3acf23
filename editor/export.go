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
	"github.com/PuerkitoBio/goquery"

	"github.com/agentberlin/webcloner/indexer"
	"github.com/agentberlin/webcloner/sandbox"
)

// RegistryEntry describes one indexed element in an elements.json export.
type RegistryEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Rank    int    `json:"rank"`
	Locked  bool   `json:"locked"`
}

// Export serializes the edited document as a standalone HTML file.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return "", s.fail("export", "", err)
	}
	out, err := sandbox.Serialize(s.handle, s.handle.BaseURL())
	if err != nil {
		return "", s.fail("export", "", err)
	}
	return out, nil
}

// BaseURL returns the URL the current document was loaded for.
func (s *Session) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return ""
	}
	return s.handle.BaseURL()
}

// Registry lists every indexed element in document order with its outer
// HTML, 1-based rank and lock flag.
func (s *Session) Registry() ([]RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return nil, s.fail("registry", "", err)
	}
	els := indexer.Elements(s.handle.Root())
	entries := make([]RegistryEntry, 0, len(els))
	for i, el := range els {
		content, err := goquery.OuterHtml(goquery.NewDocumentFromNode(el).Selection)
		if err != nil {
			return nil, s.fail("registry", indexer.ID(el), err)
		}
		id := indexer.ID(el)
		entries = append(entries, RegistryEntry{
			ID:      id,
			Content: content,
			Rank:    i + 1,
			Locked:  s.locks[id],
		})
	}
	return entries, nil
}
