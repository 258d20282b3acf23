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

// Package app wires captures, editing sessions and the capture history
// together behind the transports.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/browser"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/types"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManySessions  = errors.New("too many open sessions")
	ErrCaptureDisabled  = errors.New("capture is not configured")
	ErrMissingSourceURL = errors.New("a url is required")
	ErrShuttingDown     = errors.New("app is shutting down")
)

// RendererFactory opens the renderer of a new session.
type RendererFactory func(ctx context.Context) (editor.Renderer, error)

// Options configure an App. Only Capturer is needed for captures; every
// other field has a usable zero value.
type Options struct {
	Capturer    capture.Capturer
	Store       *store.Store
	Emitter     EventEmitter
	Logger      *zap.Logger
	Editor      editor.Config
	NewRenderer RendererFactory
	// SessionTTL closes sessions idle for longer. Zero keeps them open.
	SessionTTL time.Duration
	// MaxSessions caps open sessions. Zero means unlimited.
	MaxSessions  int
	HistoryLimit int
}

// App represents the core application logic
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	logger *zap.Logger

	sessions      map[string]*editor.Session
	reserved      int
	closing       bool
	sessionsMutex sync.RWMutex
	janitor       sync.WaitGroup
}

// NewApp creates a new App instance with dependencies injected
func NewApp(opts Options) *App {
	if opts.Emitter == nil {
		opts.Emitter = &NoOpEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Editor.LockPolicy == "" {
		opts.Editor = editor.DefaultConfig()
	}
	return &App{
		ctx:      context.Background(),
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*editor.Session),
	}
}

// Startup starts background maintenance. It runs until ctx is canceled or
// Shutdown is called.
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	if a.opts.SessionTTL <= 0 {
		return
	}
	interval := a.opts.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	a.janitor.Add(1)
	go func() {
		defer a.janitor.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case now := <-ticker.C:
				a.ReapIdle(now)
			}
		}
	}()
}

// Shutdown stops maintenance and closes every session.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.janitor.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	a.sessionsMutex.Lock()
	a.closing = true
	sessions := a.sessions
	a.sessions = make(map[string]*editor.Session)
	a.sessionsMutex.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
		a.opts.Emitter.Emit(EventSessionClosed, id)
	}
	return errors.Join(errs...)
}

// CheckSystemHealth checks if all required dependencies are available
func (a *App) CheckSystemHealth() *types.SystemHealthCheck {
	if !browser.Available() {
		return &types.SystemHealthCheck{
			IsHealthy:  false,
			ErrorTitle: "Chrome Browser Required",
			ErrorMsg:   "Google Chrome or Chromium is required to capture pages but was not found on your system.",
			Suggestion: "Please install Google Chrome from https://www.google.com/chrome/\n\nAlternatively, you can set the CHROME_EXECUTABLE_PATH environment variable to point to your Chrome installation.\n\nNote: Sessions opened from HTML you provide still work without Chrome.",
		}
	}
	return &types.SystemHealthCheck{IsHealthy: true}
}
