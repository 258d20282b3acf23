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

// Package editor implements the interactive editing core: selection and
// hover tracking with an overlay, the structure tree with expand and lock
// state, drag and drop re-parenting and inline style edits. All state
// lives in a Session, which drives a Renderer and treats the sandboxed
// document as the single source of truth.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/indexer"
	"github.com/agentberlin/webcloner/neutralize"
	"github.com/agentberlin/webcloner/sandbox"
)

// eventTimeout bounds renderer calls made on behalf of forwarded events.
const eventTimeout = 5 * time.Second

// Session is one editing session over one loaded document at a time.
// Every exported method is safe for concurrent use; operations are
// serialized so no two tree rebuilds overlap.
type Session struct {
	id       string
	cfg      Config
	renderer Renderer
	logger   *zap.Logger

	mu        sync.Mutex
	seq       *indexer.Sequence
	ix        *indexer.Indexer
	sched     *neutralize.Scheduler
	handle    *sandbox.Handle
	tree      []*indexer.Node
	hovered   string
	selected  string
	overlay   Overlay
	locks     map[string]bool
	collapsed map[string]bool

	generation  uint64
	stopListen  context.CancelFunc
	neutralized bool
	closed      bool
	loadedAt    time.Time
	lastUsed    time.Time
}

// NewSession returns a session rendering through r. A nil renderer uses
// NopRenderer and a nil logger discards output.
func NewSession(id string, r Renderer, cfg Config, logger *zap.Logger) *Session {
	if r == nil {
		r = NopRenderer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockPolicy == "" {
		cfg.LockPolicy = LockStrict
	}
	seq := indexer.NewSequence("")
	return &Session{
		id:        id,
		cfg:       cfg,
		renderer:  r,
		logger:    logger.With(zap.String("session_id", id)),
		seq:       seq,
		ix:        indexer.New(seq, indexer.WithMode(cfg.TreeMode)),
		sched:     neutralize.NewScheduler(cfg.NeutralizeDelay),
		locks:     make(map[string]bool),
		collapsed: make(map[string]bool),
		lastUsed:  time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Load replaces the session's document with src, resolved against baseURL.
// Everything tied to the previous document is torn down first: pointer
// listeners, the pending neutralizer, selection, hover, locks and expand
// state. The id sequence keeps running so ids from an earlier document never
// resolve in the new one. After the renderer finished loading, the tree
// is built, listeners and the error guard are installed and the
// neutralizer is scheduled.
func (s *Session) Load(ctx context.Context, src, baseURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.fail("load", "", ErrClosed)
	}
	s.resetLocked()

	h, err := sandbox.Load(src, baseURL, s.cfg.Sandbox)
	if err != nil {
		return s.fail("load", "", err)
	}
	// Tag every element before the document reaches the renderer so the
	// rendered copy carries the same ids.
	tree := s.ix.Tree(h.Root())
	doc, err := h.Render()
	if err != nil {
		return s.fail("load", "", err)
	}
	if err := s.renderer.Render(ctx, doc); err != nil {
		return s.fail("load", "", err)
	}

	s.handle = h
	s.tree = tree
	s.loadedAt = time.Now()
	h.MarkReady()
	s.onReadyLocked(ctx)

	s.logger.Info("Document loaded",
		zap.String("url", h.BaseURL()),
		zap.Int("elements", len(indexer.Elements(h.Root()))))
	return nil
}

// onReadyLocked runs the per-load setup chained off the ready signal.
func (s *Session) onReadyLocked(ctx context.Context) {
	<-s.handle.Ready()
	gen := s.generation

	listenCtx, cancel := context.WithCancel(context.Background())
	s.stopListen = cancel
	if err := s.renderer.Listen(listenCtx, s.dispatch); err != nil {
		s.logger.Warn("Failed to install pointer listeners", zap.Error(err))
	}
	if err := s.renderer.Eval(ctx, neutralize.GuardScript()); err != nil {
		s.logger.Warn("Failed to install error guard", zap.Error(err))
	}

	script := s.cfg.Policy.Script()
	if script == "" {
		return
	}
	s.sched.Schedule(func() { s.neutralize(gen, script) })
}

func (s *Session) neutralize(gen uint64, script string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if err := s.renderer.Eval(ctx, script); err != nil {
		s.logger.Warn("Failed to neutralize document", zap.Error(err))
		return
	}
	s.neutralized = true
	s.logger.Debug("Document neutralized", zap.Strings("capabilities", s.cfg.Policy.Names()))
}

// dispatch handles events forwarded by the renderer.
func (s *Session) dispatch(evt PointerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	var err error
	switch evt.Kind {
	case PointerMove:
		err = s.PointerMove(ctx, evt.X, evt.Y)
	case PointerLeave:
		err = s.PointerLeave(ctx)
	case PointerClick:
		if evt.ID != "" {
			err = s.Select(ctx, evt.ID)
		} else {
			err = s.Click(ctx, evt.X, evt.Y)
		}
	}
	if err != nil {
		s.logger.Debug("Pointer event ignored", zap.String("kind", string(evt.Kind)), zap.Error(err))
	}
}

func (s *Session) resetLocked() {
	s.generation++
	if s.stopListen != nil {
		s.stopListen()
		s.stopListen = nil
	}
	s.sched.Cancel()
	s.handle = nil
	s.tree = nil
	s.hovered = ""
	s.selected = ""
	s.overlay = Overlay{}
	s.neutralized = false
	clear(s.locks)
	clear(s.collapsed)
}

// rebuildLocked re-derives the tree from the document.
func (s *Session) rebuildLocked() {
	s.tree = s.ix.Tree(s.handle.Root())
}

func (s *Session) touchLocked() error {
	s.lastUsed = time.Now()
	if s.closed {
		return ErrClosed
	}
	if s.handle == nil {
		return ErrNotLoaded
	}
	return nil
}

// fail wraps err as an OperationError and logs it.
func (s *Session) fail(op, id string, err error) error {
	oe := &OperationError{Op: op, ElementID: id, Err: err}
	s.logger.Warn("Editor operation failed",
		zap.String("op", op),
		zap.String("element_id", id),
		zap.Error(err))
	return oe
}

// Info describes a session for listings.
type Info struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Loaded      bool      `json:"loaded"`
	Neutralized bool      `json:"neutralized"`
	Elements    int       `json:"elements"`
	LoadedAt    time.Time `json:"loadedAt"`
	LastUsed    time.Time `json:"lastUsed"`
}

// Info returns a snapshot of the session's state.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{
		ID:          s.id,
		Loaded:      s.handle != nil,
		Neutralized: s.neutralized,
		LoadedAt:    s.loadedAt,
		LastUsed:    s.lastUsed,
	}
	if s.handle != nil {
		info.URL = s.handle.BaseURL()
		info.Elements = len(indexer.Elements(s.handle.Root()))
	}
	return info
}

// IdleSince returns the time of the last operation.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close tears down listeners and timers and closes the renderer. Further
// calls return ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.resetLocked()
	s.seq.Reset()
	s.closed = true
	if err := s.renderer.Close(); err != nil {
		return fmt.Errorf("close renderer: %w", err)
	}
	return nil
}
