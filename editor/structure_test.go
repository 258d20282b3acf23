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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/indexer"
)

func treeIDs(t *testing.T, s *Session) []string {
	t.Helper()
	tree, err := s.Tree()
	require.NoError(t, err)
	var ids []string
	indexer.Walk(tree, func(n *indexer.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

func exportDoc(t *testing.T, s *Session) *goquery.Document {
	t.Helper()
	out, err := s.Export()
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return doc
}

func TestDropBefore(t *testing.T) {
	s, r := newTestSession(t, testConfig())

	require.NoError(t, s.Drop(context.Background(), footer, section2, Before))

	tree, err := s.Tree()
	require.NoError(t, err)
	require.Len(t, tree, 2, "footer left the top level")
	main := tree[1]
	require.Len(t, main.Children, 3)
	assert.Equal(t, []string{section1, footer, section2},
		[]string{main.Children[0].ID, main.Children[1].ID, main.Children[2].ID})
	assert.Len(t, treeIDs(t, s), 6, "no node is duplicated or dropped")

	doc := exportDoc(t, s)
	assert.Equal(t, "f", doc.Find("#s2").Prev().AttrOr("id", ""))
	assert.Equal(t, 1, r.countEvals("insertBefore"))
}

func TestDropAfter(t *testing.T) {
	s, _ := newTestSession(t, testConfig())

	require.NoError(t, s.Drop(context.Background(), header, section1, After))

	doc := exportDoc(t, s)
	assert.Equal(t, "h", doc.Find("#s1").Next().AttrOr("id", ""))
	assert.Equal(t, "s2", doc.Find("#h").Next().AttrOr("id", ""))

	// After the last sibling appends.
	require.NoError(t, s.Drop(context.Background(), header, footer, After))
	doc = exportDoc(t, s)
	assert.Equal(t, "h", doc.Find("body").Children().Last().AttrOr("id", ""))
}

func TestDropOntoSelfIsNoop(t *testing.T) {
	s, r := newTestSession(t, testConfig())
	before := treeIDs(t, s)
	require.NoError(t, s.Drop(context.Background(), section1, section1, Before))
	assert.Equal(t, before, treeIDs(t, s))
	assert.Equal(t, 0, r.countEvals("insertBefore"))
}

func TestDropIntoOwnSubtree(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	err := s.Drop(context.Background(), mainEl, div1, Before)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestDropUnknown(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	assert.ErrorIs(t, s.Drop(context.Background(), "missing", footer, Before), ErrUnknownElement)
	assert.ErrorIs(t, s.Drop(context.Background(), footer, "missing", Before), ErrUnknownElement)
	assert.ErrorIs(t, s.Drop(context.Background(), footer, header, Position("middle")), ErrInvalidMove)
}

func TestDropStrictLocks(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	ctx := context.Background()

	locked, err := s.ToggleLock(mainEl)
	require.NoError(t, err)
	require.True(t, locked)

	assert.ErrorIs(t, s.Drop(ctx, mainEl, footer, After), ErrLocked, "locked node cannot be dragged")
	assert.ErrorIs(t, s.Drop(ctx, section2, header, Before), ErrLocked, "node inside a locked subtree cannot leave")
	assert.ErrorIs(t, s.Drop(ctx, footer, section2, Before), ErrLocked, "nothing can be dropped into a locked subtree")

	assert.Equal(t, []string{mainEl}, s.Locked())

	locked, err = s.ToggleLock(mainEl)
	require.NoError(t, err)
	assert.False(t, locked)
	assert.NoError(t, s.Drop(ctx, footer, section2, Before))
}

func TestDropSourceOnlyLocks(t *testing.T) {
	cfg := testConfig()
	cfg.LockPolicy = LockSourceOnly
	s, _ := newTestSession(t, cfg)
	ctx := context.Background()

	_, err := s.ToggleLock(mainEl)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Drop(ctx, section1, footer, After), ErrLocked)
	assert.NoError(t, s.Drop(ctx, footer, section2, Before), "locked nodes remain drop targets")
}

func TestDropRendererFailureLeavesDocument(t *testing.T) {
	s, r := newTestSession(t, testConfig())
	before := treeIDs(t, s)
	r.evalErr = errors.New("stale element reference")

	err := s.Drop(context.Background(), footer, header, Before)
	var oe *OperationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "drop", oe.Op)

	r.evalErr = nil
	assert.Equal(t, before, treeIDs(t, s))
	doc := exportDoc(t, s)
	assert.Equal(t, "f", doc.Find("body").Children().Last().AttrOr("id", ""))

	// The session stays usable.
	assert.NoError(t, s.Drop(context.Background(), footer, header, Before))
}

func TestDropPosition(t *testing.T) {
	assert.Equal(t, Before, DropPosition(0, 24))
	assert.Equal(t, Before, DropPosition(11.9, 24))
	assert.Equal(t, After, DropPosition(12, 24))
	assert.Equal(t, After, DropPosition(23, 24))

	p, err := ParsePosition("AFTER")
	require.NoError(t, err)
	assert.Equal(t, After, p)
	_, err = ParsePosition("inside")
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestSetProperty(t *testing.T) {
	s, r := newTestSession(t, testConfig())
	ctx := context.Background()

	assert.ErrorIs(t, s.SetProperty(ctx, "color", "red"), ErrNoSelection)

	require.NoError(t, s.Select(ctx, section2))
	require.NoError(t, s.SetProperty(ctx, "color", "red"))
	require.NoError(t, s.SetProperty(ctx, "Padding", "4px 8px"))
	require.NoError(t, s.SetProperty(ctx, "color", "blue"))
	assert.Equal(t, 3, r.countEvals("style.setProperty"))

	sel, err := s.Selection()
	require.NoError(t, err)
	require.Len(t, sel.Style, 2)
	assert.Equal(t, "blue", sel.Style[0].Value)

	doc := exportDoc(t, s)
	assert.Equal(t, "color: blue; padding: 4px 8px;", doc.Find("#s2").AttrOr("style", ""))

	require.NoError(t, s.SetProperty(ctx, "color", ""))
	require.NoError(t, s.SetProperty(ctx, "padding", ""))
	doc = exportDoc(t, s)
	_, hasStyle := doc.Find("#s2").Attr("style")
	assert.False(t, hasStyle)

	assert.ErrorIs(t, s.SetProperty(ctx, "bad name", "x"), ErrInvalidStyle)
	assert.ErrorIs(t, s.SetProperty(ctx, "color", "red; background: url(x)"), ErrInvalidStyle)
	assert.NoError(t, s.SetProperty(ctx, "--brand-color", "#fff"))
}

func TestExportStripsEditorState(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	out, err := s.Export()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, indexer.Attr)
	assert.Contains(t, out, `<base href="https://example.com/"/>`)
}

func TestRegistry(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	_, err := s.ToggleLock(para)
	require.NoError(t, err)

	entries, err := s.Registry()
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, header, entries[0].ID)
	assert.True(t, strings.HasPrefix(entries[0].Content, "<header"))
	assert.Equal(t, para, entries[4].ID)
	assert.True(t, entries[4].Locked)
	assert.Contains(t, entries[4].Content, "text")
}
