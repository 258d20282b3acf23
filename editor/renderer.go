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

import "context"

// Rect is a box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hit is the result of a hit test in the rendered document.
type Hit struct {
	// ID is the editor id of the nearest indexed element at the point.
	ID      string `json:"id"`
	Tag     string `json:"tagName"`
	Overlay bool   `json:"overlay"`
	Body    bool   `json:"body"`
}

// PointerKind identifies a forwarded pointer event.
type PointerKind string

const (
	PointerMove  PointerKind = "move"
	PointerClick PointerKind = "click"
	PointerLeave PointerKind = "leave"
)

// PointerEvent is a pointer event raised inside the rendered document.
// ID is set for clicks the renderer already resolved to an element.
type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	ID   string      `json:"id,omitempty"`
}

// Renderer is the rendering context a Session drives. Elements are addressed
// by their editor id.
type Renderer interface {
	// Render replaces the rendered document and returns after its initial
	// load completed.
	Render(ctx context.Context, document string) error
	// Eval runs script in the rendered document.
	Eval(ctx context.Context, script string) error
	BoundingBox(ctx context.Context, id string) (Rect, error)
	ScrollOffset(ctx context.Context) (Point, error)
	ElementAt(ctx context.Context, x, y float64) (Hit, error)
	SetOverlayVisible(ctx context.Context, visible bool) error
	DrawOverlay(ctx context.Context, o Overlay) error
	// ScrollIntoView smoothly centers the element in the viewport.
	ScrollIntoView(ctx context.Context, id string) error
	// Listen forwards pointer events to handler until ctx is canceled.
	// Click events must not reach the page's own handlers.
	Listen(ctx context.Context, handler func(PointerEvent)) error
	Close() error
}

// NopRenderer renders nothing. Boxes are empty and hit tests find nothing,
// which leaves the tree and document operations fully usable.
type NopRenderer struct{}

var _ Renderer = NopRenderer{}

func (NopRenderer) Render(context.Context, string) error { return nil }
func (NopRenderer) Eval(context.Context, string) error { return nil }
func (NopRenderer) BoundingBox(context.Context, string) (Rect, error) { return Rect{}, nil }
func (NopRenderer) ScrollOffset(context.Context) (Point, error) { return Point{}, nil }
func (NopRenderer) ElementAt(context.Context, float64, float64) (Hit, error) { return Hit{}, nil }
func (NopRenderer) SetOverlayVisible(context.Context, bool) error { return nil }
func (NopRenderer) DrawOverlay(context.Context, Overlay) error { return nil }
func (NopRenderer) ScrollIntoView(context.Context, string) error { return nil }
func (NopRenderer) Listen(context.Context, func(PointerEvent)) error { return nil }
func (NopRenderer) Close() error { return nil }
