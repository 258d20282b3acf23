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

package liveview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/browser"
)

const fixture = `<!DOCTYPE html><html><head><style>
body { margin: 0 }
#a { position: absolute; left: 10px; top: 20px; width: 100px; height: 50px }
#b { position: absolute; left: 10px; top: 2000px; width: 100px; height: 50px }
</style></head><body>
<div id="a" data-editor-id="editable-element-0"><span>hit me</span></div>
<a id="b" href="https://example.com/" data-editor-id="editable-element-1" onclick="window.pageClicked = true">link</a>
</body></html>`

type refusingTabs struct{}

func (refusingTabs) NewTab(context.Context) (context.Context, context.CancelFunc, error) {
	return nil, nil, errors.New("no browser")
}

func TestOpenFailsWithoutTab(t *testing.T) {
	_, err := Open(context.Background(), refusingTabs{}, DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"[data-editor-id=\"x\"]"`, quote(`[data-editor-id="x"]`))
}

func openRenderer(t *testing.T) *Renderer {
	t.Helper()
	if !browser.Available() {
		t.Skip("Chrome not available")
	}
	b := browser.New(browser.DefaultOptions(), nil)
	t.Cleanup(func() { b.Close() })

	opts := DefaultOptions()
	opts.Width, opts.Height = 800, 600
	r, err := Open(context.Background(), b, opts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRenderAndMeasure(t *testing.T) {
	r := openRenderer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, r.Render(ctx, fixture))

	box, err := r.BoundingBox(ctx, "editable-element-0")
	require.NoError(t, err)
	assert.Equal(t, editor.Rect{X: 10, Y: 20, Width: 100, Height: 50}, box)

	_, err = r.BoundingBox(ctx, "editable-element-9")
	assert.ErrorIs(t, err, ErrNotRendered)

	hit, err := r.ElementAt(ctx, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, "editable-element-0", hit.ID)
	assert.Equal(t, "div", hit.Tag)

	hit, err = r.ElementAt(ctx, 500, 500)
	require.NoError(t, err)
	assert.Empty(t, hit.ID)
	assert.True(t, hit.Body)

	off, err := r.ScrollOffset(ctx)
	require.NoError(t, err)
	assert.Equal(t, editor.Point{}, off)
}

func TestOverlayIsTransparentToHitTests(t *testing.T) {
	r := openRenderer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, r.Render(ctx, fixture))

	require.NoError(t, r.DrawOverlay(ctx, editor.Overlay{
		Visible:  true,
		Mode:     editor.OverlaySelected,
		TargetID: "editable-element-0",
		Rect:     editor.Rect{X: 0, Y: 0, Width: 400, Height: 400},
		Style:    editor.OverlayStyle{Outline: "2px solid #2563eb"},
	}))

	var mode string
	require.NoError(t, chromedp.Run(r.tabCtx,
		chromedp.Evaluate(`document.getElementById('ce-overlay').getAttribute('data-mode')`, &mode)))
	assert.Equal(t, "selected", mode)

	hit, err := r.ElementAt(ctx, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, "editable-element-0", hit.ID)

	require.NoError(t, r.SetOverlayVisible(ctx, false))
	var display string
	require.NoError(t, chromedp.Run(r.tabCtx,
		chromedp.Evaluate(`document.getElementById('ce-overlay').style.display`, &display)))
	assert.Equal(t, "none", display)
}

func TestListenSwallowsClicks(t *testing.T) {
	r := openRenderer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, r.Render(ctx, fixture))

	events := make(chan editor.PointerEvent, 16)
	require.NoError(t, r.Listen(ctx, func(evt editor.PointerEvent) { events <- evt }))

	var top float64
	require.NoError(t, chromedp.Run(r.tabCtx,
		chromedp.Evaluate(`window.scrollTo(0, 1900); window.scrollY`, &top)))

	require.NoError(t, chromedp.Run(r.tabCtx, chromedp.MouseClickXY(20, 2010-top)))

	deadline := time.After(10 * time.Second)
	for {
		select {
		case evt := <-events:
			if evt.Kind != editor.PointerClick {
				continue
			}
			assert.Equal(t, "editable-element-1", evt.ID)
			var clicked bool
			require.NoError(t, chromedp.Run(r.tabCtx, chromedp.Evaluate(`window.pageClicked === true`, &clicked)))
			assert.False(t, clicked, "page handlers must not see the click")
			return
		case <-deadline:
			t.Fatal("no click event forwarded")
		}
	}
}

func TestClosedRenderer(t *testing.T) {
	r := openRenderer(t)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Eval(context.Background(), "1"), editor.ErrClosed)
}
