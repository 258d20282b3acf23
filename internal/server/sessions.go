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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/types"
)

// session resolves the {id} URL parameter, writing the error response when
// the session does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, err := s.app.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return nil, false
	}
	return sess, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// writeOpError maps capture, registry and editor errors to a status.
func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, editor.ErrUnknownElement):
		status = http.StatusNotFound
	case errors.Is(err, editor.ErrClosed):
		status = http.StatusGone
	case errors.Is(err, editor.ErrLocked), errors.Is(err, editor.ErrNoSelection), errors.Is(err, editor.ErrNotLoaded):
		status = http.StatusConflict
	case errors.Is(err, editor.ErrInvalidMove), errors.Is(err, editor.ErrInvalidStyle),
		errors.Is(err, capture.ErrInvalidURL), errors.Is(err, app.ErrMissingSourceURL):
		status = http.StatusBadRequest
	case errors.Is(err, capture.ErrBlockedHost), errors.Is(err, capture.ErrDisallowedByRobots):
		status = http.StatusForbidden
	case errors.Is(err, app.ErrTooManySessions), errors.Is(err, app.ErrCaptureDisabled),
		errors.Is(err, app.ErrShuttingDown):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Sessions())
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req types.OpenSessionRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.app.OpenSession(r.Context(), req)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.app.CloseSession(chi.URLParam(r, "id")); err != nil {
		s.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tree, err := sess.View()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	root, err := sess.Regions()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, root)
}

// handleHover sets the hover target; an empty id ends the hover.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.ElementRequest
	if !decode(w, r, &req) {
		return
	}
	var err error
	if req.ID == "" {
		err = sess.PointerLeave(r.Context())
	} else {
		err = sess.Hover(r.Context(), req.ID)
	}
	s.writeSelection(w, sess, err)
}

// handleSelect selects an element; an empty id clears the selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.ElementRequest
	if !decode(w, r, &req) {
		return
	}
	var err error
	if req.ID == "" {
		err = sess.ClearSelection(r.Context())
	} else {
		err = sess.Select(r.Context(), req.ID)
	}
	s.writeSelection(w, sess, err)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.PointerRequest
	if !decode(w, r, &req) {
		return
	}
	var err error
	switch editor.PointerKind(req.Kind) {
	case editor.PointerMove:
		err = sess.PointerMove(r.Context(), req.X, req.Y)
	case editor.PointerClick:
		err = sess.Click(r.Context(), req.X, req.Y)
	case editor.PointerLeave:
		err = sess.PointerLeave(r.Context())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown pointer kind %q", req.Kind))
		return
	}
	s.writeSelection(w, sess, err)
}

func (s *Server) writeSelection(w http.ResponseWriter, sess *editor.Session, err error) {
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	sel, err := sess.Selection()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.DropRequest
	if !decode(w, r, &req) {
		return
	}
	pos := editor.DropPosition(req.OffsetY, req.RowHeight)
	if req.Position != "" {
		p, err := editor.ParsePosition(req.Position)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		pos = p
	} else if req.RowHeight <= 0 {
		writeError(w, http.StatusBadRequest, "position or rowHeight is required")
		return
	}
	if err := sess.Drop(r.Context(), req.DragID, req.TargetID, pos); err != nil {
		s.writeOpError(w, err)
		return
	}
	s.handleTree(w, r)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*editor.Session).ToggleLock)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*editor.Session).ToggleExpand)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request, fn func(*editor.Session, string) (bool, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.ElementRequest
	if !decode(w, r, &req) {
		return
	}
	state, err := fn(sess, req.ID)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ToggleResponse{ID: req.ID, State: state})
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.StyleRequest
	if !decode(w, r, &req) {
		return
	}
	s.writeSelection(w, sess, sess.SetProperty(r.Context(), req.Name, req.Value))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeSelection(w, sess, nil)
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Overlay())
}

// handleExport downloads the edited page as an HTML attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Export(chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	w.Header().Set("ETag", res.ETag)
	if r.Header.Get("If-None-Match") == res.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(res.HTML))
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entries, err := sess.Registry()
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStudio(w http.ResponseWriter, r *http.Request) {
	project, err := s.app.Studio(chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
