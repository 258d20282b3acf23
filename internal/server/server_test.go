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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/config"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/types"
)

const fixture = `<html><head><title>Fixture</title></head><body>
<header id="h">Top</header>
<main><section id="s1"><p>One</p></section><section id="s2"><p>Two</p></section></main>
</body></html>`

type stubCapturer struct {
	err error
}

func (c *stubCapturer) Capture(ctx context.Context, rawURL string) (*capture.CapturedPage, error) {
	target, err := capture.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, &capture.Error{URL: target, Op: "render", Err: c.err}
	}
	return &capture.CapturedPage{
		HTML:        fixture,
		SourceURL:   target,
		FinalURL:    target,
		CapturedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		ContentHash: "feedface",
	}, nil
}

func newTestServer(t *testing.T, capt capture.Capturer, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	st, err := store.NewStore(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a := app.NewApp(app.Options{Capturer: capt, Store: st})
	a.Startup(context.Background())
	t.Cleanup(func() { a.Shutdown(context.Background()) })

	cfg := config.Default().Server
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(a, cfg, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)
	for _, path := range []string{"/health", "/api/health"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body types.HealthResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "OK", body.Status)
		assert.False(t, body.Timestamp.IsZero())
	}
}

func TestCrawl(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)

	t.Run("Success", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/crawl", types.CrawlRequest{URL: "https://example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		var body types.CrawlResponse
		decodeBody(t, rec, &body)
		assert.True(t, body.Success)
		assert.Equal(t, fixture, body.HTML)
		assert.Equal(t, "https://example.com/", body.URL)
		assert.Equal(t, "feedface", body.ContentHash)
		assert.Equal(t, 2025, body.Timestamp.Year())
	})

	t.Run("Alias", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/crawl", types.CrawlRequest{URL: "http://example.com/"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for name, body := range map[string]interface{}{
		"MissingURL": types.CrawlRequest{},
		"BadScheme":  types.CrawlRequest{URL: "ftp://example.com"},
		"NoScheme":   types.CrawlRequest{URL: "example.com"},
		"NotJSON":    "url=https://example.com",
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/crawl", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp types.ErrorResponse
			decodeBody(t, rec, &resp)
			assert.False(t, resp.Success)
			assert.Equal(t, InvalidURLMessage, resp.Error)
		})
	}
}

func TestCrawlFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Timeout", capture.ErrNavigationTimeout, http.StatusInternalServerError},
		{"Browser", errors.New("net::ERR_NAME_NOT_RESOLVED"), http.StatusInternalServerError},
		{"Blocked", capture.ErrBlockedHost, http.StatusForbidden},
		{"Robots", capture.ErrDisallowedByRobots, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubCapturer{err: tc.err}, nil)
			rec := do(t, srv, http.MethodPost, "/api/crawl", types.CrawlRequest{URL: "https://example.com/x"})
			require.Equal(t, tc.status, rec.Code)
			var body types.CrawlResponse
			decodeBody(t, rec, &body)
			assert.False(t, body.Success)
			assert.Equal(t, "https://example.com/x", body.URL)
			assert.Equal(t, tc.err.Error(), body.Error)
		})
	}
}

func TestCapturesHistory(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)
	do(t, srv, http.MethodPost, "/api/crawl", types.CrawlRequest{URL: "https://a.example/"})
	do(t, srv, http.MethodPost, "/api/crawl", types.CrawlRequest{URL: "https://b.example/"})

	rec := do(t, srv, http.MethodGet, "/api/captures?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []store.CaptureRecord
	decodeBody(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "https://b.example/", records[0].URL)

	rec = do(t, srv, http.MethodGet, "/api/captures?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, func(c *config.ServerConfig) { c.RateLimitMax = 2 })

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), RateLimitMessage)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the root health check is not limited")
}

func TestRateLimiterWindow(t *testing.T) {
	l := newRateLimiter(time.Minute, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	ok, _, _ := l.allow("a")
	assert.True(t, ok)
	ok, _, _ = l.allow("a")
	assert.False(t, ok)
	ok, _, _ = l.allow("b")
	assert.True(t, ok, "clients are counted separately")

	now = now.Add(time.Minute)
	ok, remaining, _ := l.allow("a")
	assert.True(t, ok, "a new window resets the count")
	assert.Equal(t, 0, remaining)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)
	rec := do(t, srv, http.MethodOptions, "/api/crawl", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	srv = newTestServer(t, &stubCapturer{}, func(c *config.ServerConfig) { c.CORSOrigin = "https://app.example.com" })
	rec = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)
	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "object-src 'none'")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })
	body := `{"url":"https://example.com/` + strings.Repeat("a", 200) + `"}`
	rec := do(t, srv, http.MethodPost, "/api/crawl", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{}, nil)

	rec := do(t, srv, http.MethodPost, "/api/sessions", types.OpenSessionRequest{URL: "https://example.com/page", HTML: fixture})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var info editor.Info
	decodeBody(t, rec, &info)
	require.NotEmpty(t, info.ID)
	assert.True(t, info.Loaded)
	base := "/api/sessions/" + info.ID

	rec = do(t, srv, http.MethodGet, "/api/sessions", nil)
	var infos []editor.Info
	decodeBody(t, rec, &infos)
	assert.Len(t, infos, 1)

	rec = do(t, srv, http.MethodGet, base+"/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tree []*editor.TreeNode
	decodeBody(t, rec, &tree)
	require.NotEmpty(t, tree)
	assert.Equal(t, "header", tree[0].Tag)

	headerID, s1ID, s2ID := tree[0].ID, "", ""
	for _, n := range tree {
		if n.Tag == "main" {
			require.Len(t, n.Children, 2)
			s1ID, s2ID = n.Children[0].ID, n.Children[1].ID
		}
	}
	require.NotEmpty(t, s1ID)

	t.Run("Select", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/select", types.ElementRequest{ID: s1ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sel editor.Selection
		decodeBody(t, rec, &sel)
		assert.Equal(t, s1ID, sel.Selected)

		rec = do(t, srv, http.MethodPost, base+"/select", types.ElementRequest{ID: "editable-element-999"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Style", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/style", types.StyleRequest{Name: "color", Value: "red"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(t, srv, http.MethodPost, base+"/style", types.StyleRequest{Name: "color", Value: "red; x: y"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Drop", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/drop", types.DropRequest{DragID: s2ID, TargetID: s1ID, OffsetY: 2, RowHeight: 20})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var tree []*editor.TreeNode
		decodeBody(t, rec, &tree)
		assert.Equal(t, s2ID, tree[1].Children[0].ID, "dropped before the target")

		rec = do(t, srv, http.MethodPost, base+"/drop", types.DropRequest{DragID: s2ID, TargetID: s1ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Lock", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/lock", types.ElementRequest{ID: headerID})
		require.Equal(t, http.StatusOK, rec.Code)
		var toggled types.ToggleResponse
		decodeBody(t, rec, &toggled)
		assert.True(t, toggled.State)

		rec = do(t, srv, http.MethodPost, base+"/drop", types.DropRequest{DragID: headerID, TargetID: s1ID, Position: "after"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Expand", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/expand", types.ElementRequest{ID: s1ID})
		require.Equal(t, http.StatusOK, rec.Code)
		var toggled types.ToggleResponse
		decodeBody(t, rec, &toggled)
		assert.False(t, toggled.State, "nodes start expanded")
	})

	t.Run("Pointer", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, base+"/pointer", types.PointerRequest{Kind: "move", X: 1, Y: 1})
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = do(t, srv, http.MethodPost, base+"/pointer", types.PointerRequest{Kind: "wiggle"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Overlay", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, base+"/overlay", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var o editor.Overlay
		decodeBody(t, rec, &o)
		assert.Equal(t, editor.OverlaySelected, o.Mode)
	})

	t.Run("Export", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, base+"/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE html>"))
		assert.Contains(t, rec.Body.String(), "color: red")
		etag := rec.Header().Get("ETag")
		require.NotEmpty(t, etag)

		req := httptest.NewRequest(http.MethodGet, base+"/export", nil)
		req.Header.Set("If-None-Match", etag)
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
	})

	t.Run("Registry", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, base+"/registry", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []editor.RegistryEntry
		decodeBody(t, rec, &entries)
		require.NotEmpty(t, entries)
		assert.Equal(t, 1, entries[0].Rank)
		assert.True(t, entries[0].Locked)
	})

	t.Run("Studio", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, base+"/studio", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"html"`)
	})

	rec = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, base+"/tree", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenSessionErrors(t *testing.T) {
	srv := newTestServer(t, &stubCapturer{err: capture.ErrBlockedHost}, nil)

	rec := do(t, srv, http.MethodPost, "/api/sessions", types.OpenSessionRequest{URL: "https://blocked.example/"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/sessions", types.OpenSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/sessions", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
