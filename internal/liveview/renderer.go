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

// Package liveview renders an editing session's document in a Chrome tab
// and forwards the user's pointer events back to the session.
package liveview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/indexer"
)

const (
	overlayID   = "ce-overlay"
	bindingName = "__editorPointer"
)

// ErrNotRendered is returned when an element is indexed but has no box in
// the rendered document.
var ErrNotRendered = errors.New("element not rendered")

// TabOpener opens an isolated browser tab. The cancel func closes it.
type TabOpener interface {
	NewTab(ctx context.Context) (context.Context, context.CancelFunc, error)
}

// Options configure the tab viewport and load budget.
type Options struct {
	Width       int
	Height      int
	LoadTimeout time.Duration
}

// DefaultOptions matches the capture viewport.
func DefaultOptions() Options {
	return Options{Width: 1920, Height: 1080, LoadTimeout: 30 * time.Second}
}

// Renderer is an editor.Renderer backed by one Chrome tab.
type Renderer struct {
	tabCtx   context.Context
	closeTab context.CancelFunc
	opts     Options
	logger   *zap.Logger

	mu         sync.Mutex
	closed     bool
	stopListen context.CancelFunc
}

var _ editor.Renderer = (*Renderer)(nil)

// Open opens a tab and sizes its viewport. The tab outlives ctx and is only
// closed by Close.
func Open(ctx context.Context, tabs TabOpener, opts Options, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultOptions().LoadTimeout
	}
	tabCtx, closeTab, err := tabs.NewTab(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	r := &Renderer{tabCtx: tabCtx, closeTab: closeTab, opts: opts, logger: logger}
	err = r.run(ctx,
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1.0, false),
		runtime.AddBinding(bindingName),
	)
	if err != nil {
		closeTab()
		return nil, fmt.Errorf("prepare tab: %w", err)
	}
	return r, nil
}

// Factory returns a constructor suitable for opening one renderer per
// editing session.
func Factory(tabs TabOpener, opts Options, logger *zap.Logger) func(ctx context.Context) (editor.Renderer, error) {
	return func(ctx context.Context) (editor.Renderer, error) {
		return Open(ctx, tabs, opts, logger)
	}
}

// run executes actions in the tab while honoring ctx. Canceling ctx aborts
// the actions without closing the tab.
func (r *Renderer) run(ctx context.Context, actions ...chromedp.Action) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return editor.ErrClosed
	}
	runCtx, cancel := context.WithCancel(r.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Render replaces the tab's document with document and waits for it to
// finish loading.
func (r *Renderer) Render(ctx context.Context, document string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.LoadTimeout)
	defer cancel()
	return r.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		waitComplete(),
	)
}

func waitComplete() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			var state string
			if err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx); err != nil {
				return err
			}
			if state == "complete" {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// Eval runs script in the document.
func (r *Renderer) Eval(ctx context.Context, script string) error {
	return r.run(ctx, chromedp.Evaluate(script, nil))
}

// BoundingBox returns the element's viewport box.
func (r *Renderer) BoundingBox(ctx context.Context, id string) (editor.Rect, error) {
	var box *editor.Rect
	script := fmt.Sprintf(`(function (sel) {
  var el = document.querySelector(sel);
  if (!el) return null;
  var r = el.getBoundingClientRect();
  return {x: r.left, y: r.top, width: r.width, height: r.height};
})(%s)`, quote(indexer.Selector(id)))
	if err := r.run(ctx, chromedp.Evaluate(script, &box)); err != nil {
		return editor.Rect{}, err
	}
	if box == nil {
		return editor.Rect{}, fmt.Errorf("%w: %s", ErrNotRendered, id)
	}
	return *box, nil
}

// ScrollOffset returns the document scroll position.
func (r *Renderer) ScrollOffset(ctx context.Context) (editor.Point, error) {
	var p editor.Point
	err := r.run(ctx, chromedp.Evaluate(`({x: window.scrollX, y: window.scrollY})`, &p))
	return p, err
}

// ElementAt hit tests a viewport point, resolving to the nearest indexed
// ancestor.
func (r *Renderer) ElementAt(ctx context.Context, x, y float64) (editor.Hit, error) {
	var hit editor.Hit
	script := fmt.Sprintf(`(function (x, y) {
  var el = document.elementFromPoint(x, y);
  if (!el) return {id: '', tagName: '', overlay: false, body: false};
  if (el.id === %[3]s) return {id: '', tagName: '', overlay: true, body: false};
  var target = el.closest('[%[4]s]');
  if (!target) {
    return {id: '', tagName: el.tagName.toLowerCase(), overlay: false,
      body: el === document.body || el === document.documentElement};
  }
  return {id: target.getAttribute('%[4]s'), tagName: target.tagName.toLowerCase(),
    overlay: false, body: target === document.body};
})(%[1]f, %[2]f)`, x, y, quote(overlayID), indexer.Attr)
	err := r.run(ctx, chromedp.Evaluate(script, &hit))
	return hit, err
}

// SetOverlayVisible shows or hides the overlay without moving it.
func (r *Renderer) SetOverlayVisible(ctx context.Context, visible bool) error {
	display := "none"
	if visible {
		display = "block"
	}
	script := fmt.Sprintf(`(function () {
  var el = document.getElementById(%s);
  if (el) el.style.display = %s;
})()`, quote(overlayID), quote(display))
	return r.run(ctx, chromedp.Evaluate(script, nil))
}

// DrawOverlay creates the overlay on first use and applies o to it.
func (r *Renderer) DrawOverlay(ctx context.Context, o editor.Overlay) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`(function (o) {
  var el = document.getElementById(%[2]s);
  if (!el) {
    if (!document.body) return;
    el = document.createElement('div');
    el.id = %[2]s;
    el.setAttribute('data-editor-injected', 'overlay');
    document.body.appendChild(el);
  }
  var s = el.style;
  s.position = 'absolute';
  s.pointerEvents = 'none';
  s.zIndex = '2147483647';
  s.boxSizing = 'border-box';
  s.left = o.rect.x + 'px';
  s.top = o.rect.y + 'px';
  s.width = o.rect.width + 'px';
  s.height = o.rect.height + 'px';
  s.outline = o.style.outline || 'none';
  s.background = o.style.background || 'transparent';
  s.display = o.visible ? 'block' : 'none';
  el.setAttribute('data-mode', o.mode || '');
})(%[1]s)`, payload, quote(overlayID))
	return r.run(ctx, chromedp.Evaluate(script, nil))
}

// ScrollIntoView smoothly centers the element.
func (r *Renderer) ScrollIntoView(ctx context.Context, id string) error {
	script := fmt.Sprintf(`(function (sel) {
  var el = document.querySelector(sel);
  if (el) el.scrollIntoView({behavior: 'smooth', block: 'center', inline: 'nearest'});
})(%s)`, quote(indexer.Selector(id)))
	return r.run(ctx, chromedp.Evaluate(script, nil))
}

// listenerScript reports pointer activity through the binding. Clicks are
// swallowed in the capture phase so page handlers and link navigation never
// see them.
const listenerScript = `(function () {
  var prev = window.__editorListeners;
  if (prev) {
    window.removeEventListener('mousemove', prev.move, true);
    window.removeEventListener('click', prev.click, true);
    document.documentElement.removeEventListener('mouseleave', prev.leave);
  }
  var send = function (kind, e, id) {
    try {
      window.__editorPointer(JSON.stringify({kind: kind, x: e.clientX || 0, y: e.clientY || 0, id: id || ''}));
    } catch (err) {}
  };
  var last = 0;
  var l = {
    move: function (e) {
      var now = Date.now();
      if (now - last < 30) return;
      last = now;
      send('move', e);
    },
    leave: function (e) { send('leave', e); },
    click: function (e) {
      e.preventDefault();
      e.stopImmediatePropagation();
      var el = e.target && e.target.closest ? e.target.closest('[data-editor-id]') : null;
      send('click', e, el ? el.getAttribute('data-editor-id') : '');
    }
  };
  window.addEventListener('mousemove', l.move, true);
  window.addEventListener('click', l.click, true);
  document.documentElement.addEventListener('mouseleave', l.leave);
  window.__editorListeners = l;
})()`

// Listen installs the pointer listener in the current document and forwards
// its events to handler until ctx is done. A later Listen replaces the
// previous handler.
func (r *Renderer) Listen(ctx context.Context, handler func(editor.PointerEvent)) error {
	listenCtx, cancel := context.WithCancel(r.tabCtx)
	stop := context.AfterFunc(ctx, cancel)

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*runtime.EventBindingCalled)
		if !ok || e.Name != bindingName {
			return
		}
		var evt editor.PointerEvent
		if err := json.Unmarshal([]byte(e.Payload), &evt); err != nil {
			r.logger.Debug("Dropping malformed pointer event", zap.Error(err))
			return
		}
		go handler(evt)
	})

	if err := r.run(ctx, chromedp.Evaluate(listenerScript, nil)); err != nil {
		stop()
		cancel()
		return err
	}

	r.mu.Lock()
	prev := r.stopListen
	r.stopListen = func() {
		stop()
		cancel()
	}
	r.mu.Unlock()
	if prev != nil {
		prev()
	}
	return nil
}

// Close stops listening and closes the tab.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stopListen := r.stopListen
	r.stopListen = nil
	r.mu.Unlock()

	if stopListen != nil {
		stopListen()
	}
	r.closeTab()
	return nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
