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
	"sync"
)

// DefaultPrefix is prepended to every id issued by a Sequence created with
// an empty prefix.
const DefaultPrefix = "editable-element-"

// IDGenerator issues element identifiers. Implementations must never return
// the same value twice between resets.
type IDGenerator interface {
	Next() string
}

// Sequence is a resettable, goroutine safe counter producing ids of the form
// "<prefix><n>" starting at n = 0. An editing session owns one Sequence so
// ids never collide across sessions.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence returns a Sequence using prefix, or DefaultPrefix when empty.
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sequence{prefix: prefix}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.prefix + strconv.Itoa(s.next)
	s.next++
	return id
}

// Reset restarts the sequence at zero. Callers must only reset when no
// document tagged by this sequence is still in use.
func (s *Sequence) Reset() {
	s.mu.Lock()
	s.next = 0
	s.mu.Unlock()
}

// Issued returns how many ids have been handed out since the last reset.
func (s *Sequence) Issued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
