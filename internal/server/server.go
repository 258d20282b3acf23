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

// Package server exposes captures and editing sessions over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/config"
	"github.com/agentberlin/webcloner/internal/types"
	"github.com/agentberlin/webcloner/internal/version"
)

// InvalidURLMessage is returned for crawl requests without a usable URL.
const InvalidURLMessage = "Invalid URL. Must start with http:// or https://"

// Server represents the HTTP server
type Server struct {
	app    *app.App
	cfg    config.ServerConfig
	logger *zap.Logger
	router *chi.Mux
	now    func() time.Time
}

// Option customizes a Server.
type Option func(*Server, chi.Router)

// WithMCP mounts an MCP handler at path.
func WithMCP(path string, h http.Handler) Option {
	return func(s *Server, r chi.Router) {
		r.Handle(path, h)
		r.Handle(path+"/*", h)
	}
}

// NewServer creates a new HTTP server
func NewServer(a *app.App, cfg config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		app:    a,
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
		now:    time.Now,
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors(cfg.CORSOrigin))
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	s.registerRoutes(r)
	for _, opt := range opts {
		opt(s, r)
	}
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(r chi.Router) {
	limiter := newRateLimiter(s.cfg.RateLimitWindow, s.cfg.RateLimitMax)

	r.Get("/health", s.handleHealth)
	r.With(limiter.middleware).Post("/crawl", s.handleCrawl)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.middleware)
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/system", s.handleSystem)
		r.Post("/crawl", s.handleCrawl)
		r.Get("/captures", s.handleCaptures)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleOpenSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleSessionInfo)
				r.Delete("/", s.handleCloseSession)
				r.Get("/tree", s.handleTree)
				r.Get("/regions", s.handleRegions)
				r.Post("/hover", s.handleHover)
				r.Post("/select", s.handleSelect)
				r.Post("/pointer", s.handlePointer)
				r.Post("/drop", s.handleDrop)
				r.Post("/lock", s.handleLock)
				r.Post("/expand", s.handleExpand)
				r.Post("/style", s.handleStyle)
				r.Get("/selection", s.handleSelection)
				r.Get("/overlay", s.handleOverlay)
				r.Get("/export", s.handleExport)
				r.Get("/registry", s.handleRegistry)
				r.Get("/studio", s.handleStudio)
			})
		})
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "OK", Timestamp: s.now().UTC()})
}

// handleVersion returns the application version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.VersionInfo{Version: version.CurrentVersion, GoVersion: version.GoVersion()})
}

// handleSystem reports whether Chrome is available
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.CheckSystemHealth())
}

// handleCrawl captures one page
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req types.CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, InvalidURLMessage)
		return
	}
	if _, err := capture.ValidateURL(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, InvalidURLMessage)
		return
	}

	page, err := s.app.Capture(r.Context(), req.URL)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, capture.ErrInvalidURL):
			status = http.StatusBadRequest
		case errors.Is(err, capture.ErrBlockedHost), errors.Is(err, capture.ErrDisallowedByRobots):
			status = http.StatusForbidden
		}
		writeJSON(w, status, types.CrawlResponse{
			Success:   false,
			URL:       req.URL,
			Timestamp: s.now().UTC(),
			Error:     causeMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, types.CrawlResponse{
		Success:     true,
		HTML:        page.HTML,
		URL:         page.SourceURL,
		FinalURL:    page.FinalURL,
		ContentHash: page.ContentHash,
		Framework:   page.Framework,
		Timestamp:   page.CapturedAt,
	})
}

// handleCaptures returns the capture history
func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}
	records, err := s.app.RecentCaptures(limit)
	if err != nil {
		s.logger.Error("Failed to list captures", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// causeMessage drops the URL and operation prefix of a capture error; the
// response names the URL separately.
func causeMessage(err error) string {
	var ce *capture.Error
	if errors.As(err, &ce) {
		return ce.Err.Error()
	}
	return err.Error()
}
