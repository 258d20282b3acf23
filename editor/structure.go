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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/agentberlin/webcloner/cssmin"
	"github.com/agentberlin/webcloner/indexer"
)

// Position says where a dropped node goes relative to the target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// ParsePosition validates a wire value.
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(s)); p {
	case Before, After:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown drop position %q", ErrInvalidMove, s)
}

// DropPosition maps a pointer offset inside a tree row to a position: the
// upper half inserts before the target, the lower half after it.
func DropPosition(offsetY, rowHeight float64) Position {
	if offsetY < rowHeight/2 {
		return Before
	}
	return After
}

const moveScript = `(function (dragId, targetId, position) {
  var drag = document.querySelector('[data-editor-id="' + dragId + '"]');
  var target = document.querySelector('[data-editor-id="' + targetId + '"]');
  if (!drag || !target || !target.parentNode) { throw new Error('stale element reference'); }
  target.parentNode.insertBefore(drag, position === 'before' ? target : target.nextSibling);
})(%s, %s, %s);`

// Drop moves dragID next to targetID, in the rendered document first and
// then in the session's document, and rebuilds the tree. Dropping a node
// onto itself does nothing. A failed move changes neither document.
func (s *Session) Drop(ctx context.Context, dragID, targetID string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return s.fail("drop", dragID, err)
	}
	if dragID == targetID {
		return nil
	}
	if pos != Before && pos != After {
		return s.fail("drop", dragID, fmt.Errorf("%w: unknown drop position %q", ErrInvalidMove, pos))
	}

	root := s.handle.Root()
	drag := indexer.Find(root, dragID)
	target := indexer.Find(root, targetID)
	if drag == nil {
		return s.fail("drop", dragID, ErrUnknownElement)
	}
	if target == nil {
		return s.fail("drop", targetID, ErrUnknownElement)
	}
	if target.Parent == nil || contains(drag, target) {
		return s.fail("drop", dragID, fmt.Errorf("%w: %s is inside %s", ErrInvalidMove, targetID, dragID))
	}
	if s.lockedLocked(drag) {
		return s.fail("drop", dragID, ErrLocked)
	}
	if s.cfg.LockPolicy == LockStrict && s.lockedLocked(target) {
		return s.fail("drop", targetID, ErrLocked)
	}

	script := fmt.Sprintf(moveScript, jsString(dragID), jsString(targetID), jsString(string(pos)))
	if err := s.renderer.Eval(ctx, script); err != nil {
		return s.fail("drop", dragID, err)
	}

	drag.Parent.RemoveChild(drag)
	if pos == Before {
		target.Parent.InsertBefore(drag, target)
	} else {
		target.Parent.InsertBefore(drag, target.NextSibling)
	}
	s.rebuildLocked()
	s.redrawLocked(ctx)

	s.logger.Debug("Element moved",
		zap.String("element_id", dragID),
		zap.String("target_id", targetID),
		zap.String("position", string(pos)))
	return nil
}

// lockedLocked reports whether n or one of its ancestors is locked.
func (s *Session) lockedLocked(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if id := indexer.ID(n); id != "" && s.locks[id] {
			return true
		}
	}
	return false
}

// contains reports whether n is ancestor or equal to other.
func contains(n, other *html.Node) bool {
	for ; other != nil; other = other.Parent {
		if other == n {
			return true
		}
	}
	return false
}

var propertyName = regexp.MustCompile(`^(--[A-Za-z0-9_-]+|-?[A-Za-z][A-Za-z0-9-]*)$`)

const styleScript = `(function (id, name, value) {
  var el = document.querySelector('[data-editor-id="' + id + '"]');
  if (!el) { throw new Error('stale element reference'); }
  if (value === '') { el.style.removeProperty(name); } else { el.style.setProperty(name, value); }
})(%s, %s, %s);`

// SetProperty sets an inline style property on the selected element. An
// empty value removes the property.
func (s *Session) SetProperty(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return s.fail("style", "", err)
	}
	id := s.selected
	if id == "" {
		return s.fail("style", "", ErrNoSelection)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	if !propertyName.MatchString(name) || strings.ContainsAny(value, ";{}") {
		return s.fail("style", id, fmt.Errorf("%w: %s: %s", ErrInvalidStyle, name, value))
	}
	el := indexer.Find(s.handle.Root(), id)
	if el == nil {
		return s.fail("style", id, ErrUnknownElement)
	}

	if err := s.renderer.Eval(ctx, fmt.Sprintf(styleScript, jsString(id), jsString(name), jsString(value))); err != nil {
		return s.fail("style", id, err)
	}

	style := cssmin.SetProperty(attrValue(el, "style"), name, value)
	setAttr(el, "style", style)
	s.redrawLocked(ctx)
	return nil
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets key on n; an empty value removes the attribute.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace != "" || n.Attr[i].Key != key {
			continue
		}
		if val == "" {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
		} else {
			n.Attr[i].Val = val
		}
		return
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}
