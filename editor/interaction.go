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
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/cssmin"
	"github.com/agentberlin/webcloner/indexer"
)

// OverlayMode is the visual treatment of the overlay.
type OverlayMode string

const (
	OverlayHidden   OverlayMode = ""
	OverlayHover    OverlayMode = "hover"
	OverlaySelected OverlayMode = "selected"
)

// OverlayStyle is the CSS applied to the overlay box.
type OverlayStyle struct {
	Outline    string `json:"outline"`
	Background string `json:"background"`
}

var overlayStyles = map[OverlayMode]OverlayStyle{
	OverlayHover:    {Outline: "2px dashed #3b82f6", Background: "transparent"},
	OverlaySelected: {Outline: "2px solid #2563eb", Background: "rgba(37, 99, 235, 0.12)"},
}

// Overlay is the highlight drawn over the hovered or selected element. Rect
// is in document coordinates: the element's viewport box plus the
// document's scroll offset.
type Overlay struct {
	Visible  bool         `json:"visible"`
	Mode     OverlayMode  `json:"mode"`
	TargetID string       `json:"targetId,omitempty"`
	Rect     Rect         `json:"rect"`
	Style    OverlayStyle `json:"style"`
}

// Selection is the hover and selection state plus what an inspector panel
// shows for the selected element.
type Selection struct {
	Hovered  string               `json:"hovered,omitempty"`
	Selected string               `json:"selected,omitempty"`
	Tag      string               `json:"tagName,omitempty"`
	Style    []cssmin.Declaration `json:"style,omitempty"`
	Text     string               `json:"text,omitempty"`
}

// Hover sets the hover target. An existing selection is kept; the overlay
// switches to the hover treatment on the new target.
func (s *Session) Hover(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return s.fail("hover", id, err)
	}
	if indexer.Find(s.handle.Root(), id) == nil {
		return s.fail("hover", id, ErrUnknownElement)
	}
	if s.hovered == id {
		return nil
	}
	s.hovered = id
	s.redrawLocked(ctx)
	return nil
}

// PointerLeave clears the hover target.
func (s *Session) PointerLeave(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return err
	}
	if s.hovered == "" {
		return nil
	}
	s.hovered = ""
	s.redrawLocked(ctx)
	return nil
}

// Select makes id the selection and clears hover in the same update. The
// element's ancestors are expanded in the tree and the element is scrolled
// into the center of the viewport.
func (s *Session) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return s.fail("select", id, err)
	}
	if indexer.Find(s.handle.Root(), id) == nil {
		return s.fail("select", id, ErrUnknownElement)
	}
	s.selected = id
	s.hovered = ""
	s.expandPathLocked(id)
	if err := s.renderer.ScrollIntoView(ctx, id); err != nil {
		s.logger.Warn("Failed to scroll selection into view", zap.String("element_id", id), zap.Error(err))
	}
	s.redrawLocked(ctx)
	return nil
}

// ClearSelection removes the selection.
func (s *Session) ClearSelection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return err
	}
	s.selected = ""
	s.redrawLocked(ctx)
	return nil
}

// PointerMove hit-tests the point and makes the element found the hover
// target. The overlay is hidden during the hit test so it never reports
// itself; the overlay, the body and the current hover target are ignored.
func (s *Session) PointerMove(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return err
	}
	hit, err := s.hitTestLocked(ctx, x, y)
	if err != nil {
		return s.fail("pointer", "", err)
	}
	if hit.ID == "" || hit.Overlay || hit.Body || hit.ID == s.hovered {
		return nil
	}
	s.hovered = hit.ID
	s.redrawLocked(ctx)
	return nil
}

// Click selects the element at the point.
func (s *Session) Click(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	hit, err := s.hitTestLocked(ctx, x, y)
	s.mu.Unlock()
	if err != nil {
		return s.fail("click", "", err)
	}
	if hit.ID == "" || hit.Overlay || hit.Body {
		return nil
	}
	return s.Select(ctx, hit.ID)
}

func (s *Session) hitTestLocked(ctx context.Context, x, y float64) (Hit, error) {
	if err := s.touchLocked(); err != nil {
		return Hit{}, err
	}
	if err := s.renderer.SetOverlayVisible(ctx, false); err != nil {
		return Hit{}, err
	}
	hit, err := s.renderer.ElementAt(ctx, x, y)
	if rerr := s.renderer.SetOverlayVisible(ctx, true); rerr != nil && err == nil {
		err = rerr
	}
	return hit, err
}

// Selection returns the current hover and selection state.
func (s *Session) Selection() (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touchLocked(); err != nil {
		return Selection{}, err
	}
	sel := Selection{Hovered: s.hovered, Selected: s.selected}
	if s.selected == "" {
		return sel, nil
	}
	if el := indexer.Find(s.handle.Root(), s.selected); el != nil {
		node := goquery.NewDocumentFromNode(el).Selection
		sel.Tag = el.Data
		sel.Style = cssmin.ParseDeclarations(node.AttrOr("style", ""))
		sel.Text = truncate(strings.Join(strings.Fields(node.Text()), " "), 200)
	}
	return sel, nil
}

// Overlay returns the overlay computed on the last hover or selection
// change.
func (s *Session) Overlay() Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// redrawLocked recomputes the overlay from the current state and draws it.
// Hover takes precedence over selection.
func (s *Session) redrawLocked(ctx context.Context) {
	o := Overlay{}
	switch {
	case s.hovered != "":
		o.Mode, o.TargetID = OverlayHover, s.hovered
	case s.selected != "":
		o.Mode, o.TargetID = OverlaySelected, s.selected
	}
	if o.TargetID != "" {
		box, err := s.renderer.BoundingBox(ctx, o.TargetID)
		if err != nil {
			s.logger.Warn("Failed to measure overlay target", zap.String("element_id", o.TargetID), zap.Error(err))
			o = Overlay{}
		} else {
			scroll, err := s.renderer.ScrollOffset(ctx)
			if err != nil {
				s.logger.Warn("Failed to read scroll offset", zap.Error(err))
			}
			o.Visible = true
			o.Style = overlayStyles[o.Mode]
			o.Rect = Rect{X: box.X + scroll.X, Y: box.Y + scroll.Y, Width: box.Width, Height: box.Height}
		}
	}
	s.overlay = o
	if err := s.renderer.DrawOverlay(ctx, o); err != nil {
		s.logger.Warn("Failed to draw overlay", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
