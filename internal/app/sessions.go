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

package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/types"
	"github.com/agentberlin/webcloner/sandbox"
	"github.com/agentberlin/webcloner/studio"
)

// OpenSession opens an editing session. With HTML set, that document is
// loaded against URL; otherwise URL is captured first.
func (a *App) OpenSession(ctx context.Context, req types.OpenSessionRequest) (*editor.Session, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrMissingSourceURL
	}
	if err := a.reserveSession(); err != nil {
		return nil, err
	}
	reserved := true
	defer func() {
		if reserved {
			a.releaseSession()
		}
	}()

	src, baseURL := req.HTML, req.URL
	if src == "" {
		page, err := a.Capture(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		src, baseURL = page.HTML, page.FinalURL
		if baseURL == "" || baseURL == "about:blank" {
			baseURL = page.SourceURL
		}
	} else {
		normalized, err := capture.ValidateURL(req.URL)
		if err != nil {
			return nil, err
		}
		baseURL = normalized
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	var r editor.Renderer = editor.NopRenderer{}
	if a.opts.NewRenderer != nil {
		r, err = a.opts.NewRenderer(ctx)
		if err != nil {
			return nil, fmt.Errorf("open renderer: %w", err)
		}
	}

	s := editor.NewSession(id.String(), r, a.opts.Editor, a.logger)
	if err := s.Load(ctx, src, baseURL); err != nil {
		s.Close()
		return nil, err
	}

	a.sessionsMutex.Lock()
	a.reserved--
	reserved = false
	if a.closing {
		a.sessionsMutex.Unlock()
		s.Close()
		return nil, ErrShuttingDown
	}
	a.sessions[s.ID()] = s
	a.sessionsMutex.Unlock()

	a.logger.Info("Session opened", zap.String("session_id", s.ID()), zap.String("url", baseURL))
	a.opts.Emitter.Emit(EventSessionOpened, s.Info())
	return s, nil
}

// reserveSession claims a slot under MaxSessions for an OpenSession call in
// progress. Slots are counted until releaseSession.
func (a *App) reserveSession() error {
	a.sessionsMutex.Lock()
	defer a.sessionsMutex.Unlock()
	if a.closing {
		return ErrShuttingDown
	}
	if a.opts.MaxSessions > 0 && len(a.sessions)+a.reserved >= a.opts.MaxSessions {
		return ErrTooManySessions
	}
	a.reserved++
	return nil
}

func (a *App) releaseSession() {
	a.sessionsMutex.Lock()
	a.reserved--
	a.sessionsMutex.Unlock()
}

// Session returns an open session.
func (a *App) Session(id string) (*editor.Session, error) {
	a.sessionsMutex.RLock()
	s, ok := a.sessions[id]
	a.sessionsMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// SessionCount returns the number of open sessions.
func (a *App) SessionCount() int {
	a.sessionsMutex.RLock()
	defer a.sessionsMutex.RUnlock()
	return len(a.sessions)
}

// Sessions lists open sessions, most recently used first.
func (a *App) Sessions() []editor.Info {
	a.sessionsMutex.RLock()
	infos := make([]editor.Info, 0, len(a.sessions))
	for _, s := range a.sessions {
		infos = append(infos, s.Info())
	}
	a.sessionsMutex.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastUsed.After(infos[j].LastUsed)
	})
	return infos
}

// CloseSession closes and forgets a session.
func (a *App) CloseSession(id string) error {
	a.sessionsMutex.Lock()
	s, ok := a.sessions[id]
	delete(a.sessions, id)
	a.sessionsMutex.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	err := s.Close()
	a.logger.Info("Session closed", zap.String("session_id", id))
	a.opts.Emitter.Emit(EventSessionClosed, id)
	return err
}

// ReapIdle closes sessions idle for longer than the TTL and returns their
// ids.
func (a *App) ReapIdle(now time.Time) []string {
	if a.opts.SessionTTL <= 0 {
		return nil
	}
	a.sessionsMutex.RLock()
	var idle []string
	for id, s := range a.sessions {
		if now.Sub(s.IdleSince()) > a.opts.SessionTTL {
			idle = append(idle, id)
		}
	}
	a.sessionsMutex.RUnlock()

	for _, id := range idle {
		if err := a.CloseSession(id); err != nil {
			a.logger.Warn("Failed to close idle session", zap.String("session_id", id), zap.Error(err))
		}
	}
	return idle
}

// ExportResult is a serialized document ready for download.
type ExportResult struct {
	HTML     string
	FileName string
	ETag     string
}

// Export serializes a session's current document. The ETag changes
// whenever the document does.
func (a *App) Export(id string) (*ExportResult, error) {
	s, err := a.Session(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.Export()
	if err != nil {
		return nil, err
	}
	res := &ExportResult{
		HTML:     doc,
		FileName: sandbox.DownloadName(s.BaseURL()),
		ETag:     fmt.Sprintf(`"%016x"`, xxhash.Sum64String(doc)),
	}
	if a.opts.Store != nil {
		err := a.opts.Store.RecordExport(&store.ExportRecord{
			SessionID: id,
			URL:       s.BaseURL(),
			ETag:      res.ETag,
			Bytes:     len(doc),
		})
		if err != nil {
			a.logger.Warn("Failed to record export", zap.String("session_id", id), zap.Error(err))
		}
	}
	a.opts.Emitter.Emit(EventSessionExported, map[string]string{"session": id, "etag": res.ETag})
	return res, nil
}

// Studio builds a page-builder project from a session's current document.
func (a *App) Studio(id string) (*studio.Project, error) {
	s, err := a.Session(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.Export()
	if err != nil {
		return nil, err
	}
	return studio.BuildProject(doc, s.BaseURL(), studio.Options{BaselineScript: a.opts.Editor.Sandbox.BaselineScript})
}
