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

package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/types"
	"github.com/agentberlin/webcloner/studio"
)

const fixture = `<html><head><title>Fixture</title><link rel="stylesheet" href="/main.css"></head><body>
<header>Top</header>
<main><section><p>One</p></section><section><p>Two</p></section></main>
</body></html>`

type fakeCapturer struct{}

func (fakeCapturer) Capture(ctx context.Context, rawURL string) (*capture.CapturedPage, error) {
	if _, err := capture.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return &capture.CapturedPage{
		HTML:        fixture,
		SourceURL:   rawURL,
		FinalURL:    rawURL,
		CapturedAt:  time.Now(),
		ContentHash: "cafe",
		Duration:    50 * time.Millisecond,
	}, nil
}

// setupSession connects an MCP client to a server backed by a fresh app.
func setupSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	st, err := store.NewStore(store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a := app.NewApp(app.Options{Capturer: fakeCapturer{}, Store: st})
	a.Startup(context.Background())
	t.Cleanup(func() { a.Shutdown(context.Background()) })

	s := NewMCPServer(a, nil)
	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := s.GetServer().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "webcloner-test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, name)
	require.NotEmpty(t, res.Content, name)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text, res.IsError
}

func callJSON(t *testing.T, cs *mcp.ClientSession, name string, args any, out any) {
	t.Helper()
	text, isErr := callTool(t, cs, name, args)
	require.False(t, isErr, "%s: %s", name, text)
	require.NoError(t, json.Unmarshal([]byte(text), out), text)
}

func TestListTools(t *testing.T) {
	cs := setupSession(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"capture_page", "recent_captures", "open_session", "list_sessions", "close_session",
		"get_tree", "get_regions", "move_element", "toggle_lock", "toggle_expand",
		"hover_element", "select_element", "get_selection", "set_style",
		"export_html", "get_registry", "build_studio_project",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestCapturePageTool(t *testing.T) {
	cs := setupSession(t)

	t.Run("ValidURL_ReturnsSummary", func(t *testing.T) {
		var res CapturePageResult
		callJSON(t, cs, "capture_page", map[string]any{"url": "https://example.com/"}, &res)
		assert.Equal(t, "https://example.com/", res.FinalURL)
		assert.Equal(t, len(fixture), res.Bytes)
		assert.Equal(t, int64(50), res.DurationMs)
		assert.Empty(t, res.HTML)

		callJSON(t, cs, "capture_page", map[string]any{"url": "https://example.com/", "includeHtml": true}, &res)
		assert.Equal(t, fixture, res.HTML)
	})

	t.Run("InvalidURL_ReturnsToolError", func(t *testing.T) {
		text, isErr := callTool(t, cs, "capture_page", map[string]any{"url": "ftp://example.com"})
		assert.True(t, isErr)
		assert.NotEmpty(t, text)
	})

	t.Run("HistoryListsSuccessfulCaptures", func(t *testing.T) {
		var records []store.CaptureRecord
		callJSON(t, cs, "recent_captures", map[string]any{"limit": 10}, &records)
		require.Len(t, records, 2)
		assert.True(t, records[0].Success)
		assert.Equal(t, "cafe", records[0].ContentHash)
	})
}

func TestSessionTools(t *testing.T) {
	cs := setupSession(t)

	var info editor.Info
	callJSON(t, cs, "open_session", map[string]any{"url": "https://example.com/"}, &info)
	require.NotEmpty(t, info.ID)
	assert.True(t, info.Loaded)
	sid := map[string]any{"sessionId": info.ID}

	var infos []editor.Info
	callJSON(t, cs, "list_sessions", map[string]any{}, &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, info.ID, infos[0].ID)

	var tree []*editor.TreeNode
	callJSON(t, cs, "get_tree", sid, &tree)
	require.Len(t, tree, 2)
	require.Equal(t, "main", tree[1].Tag)
	require.Len(t, tree[1].Children, 2)
	headerID := tree[0].ID
	s1, s2 := tree[1].Children[0].ID, tree[1].Children[1].ID

	t.Run("Regions", func(t *testing.T) {
		var root editor.TreeNode
		callJSON(t, cs, "get_regions", sid, &root)
		assert.NotEmpty(t, root.Children)
	})

	t.Run("MoveElement", func(t *testing.T) {
		var moved []*editor.TreeNode
		callJSON(t, cs, "move_element", map[string]any{
			"sessionId": info.ID, "dragId": s2, "targetId": s1, "position": "before",
		}, &moved)
		assert.Equal(t, s2, moved[1].Children[0].ID)

		_, isErr := callTool(t, cs, "move_element", map[string]any{
			"sessionId": info.ID, "dragId": s2, "targetId": s1, "position": "sideways",
		})
		assert.True(t, isErr)
	})

	t.Run("ToggleLock", func(t *testing.T) {
		var toggled types.ToggleResponse
		callJSON(t, cs, "toggle_lock", map[string]any{"sessionId": info.ID, "elementId": headerID}, &toggled)
		assert.True(t, toggled.State)

		text, isErr := callTool(t, cs, "move_element", map[string]any{
			"sessionId": info.ID, "dragId": headerID, "targetId": s1, "position": "after",
		})
		assert.True(t, isErr)
		assert.Contains(t, text, editor.ErrLocked.Error())
	})

	t.Run("ToggleExpand", func(t *testing.T) {
		var toggled types.ToggleResponse
		callJSON(t, cs, "toggle_expand", map[string]any{"sessionId": info.ID, "elementId": s1}, &toggled)
		assert.False(t, toggled.State)
	})

	t.Run("SelectAndStyle", func(t *testing.T) {
		var sel editor.Selection
		callJSON(t, cs, "hover_element", map[string]any{"sessionId": info.ID, "elementId": s2}, &sel)
		assert.Equal(t, s2, sel.Hovered)

		callJSON(t, cs, "select_element", map[string]any{"sessionId": info.ID, "elementId": s1}, &sel)
		assert.Equal(t, s1, sel.Selected)
		assert.Equal(t, "section", sel.Tag)

		callJSON(t, cs, "set_style", map[string]any{"sessionId": info.ID, "name": "color", "value": "red"}, &sel)
		require.Len(t, sel.Style, 1)
		assert.Equal(t, "color", sel.Style[0].Property)

		callJSON(t, cs, "get_selection", sid, &sel)
		assert.Equal(t, s1, sel.Selected)

		callJSON(t, cs, "select_element", map[string]any{"sessionId": info.ID, "elementId": ""}, &sel)
		assert.Empty(t, sel.Selected)

		_, isErr := callTool(t, cs, "set_style", map[string]any{"sessionId": info.ID, "name": "color", "value": "blue"})
		assert.True(t, isErr, "no selection")
	})

	t.Run("Export", func(t *testing.T) {
		var res ExportHTMLResult
		callJSON(t, cs, "export_html", sid, &res)
		assert.Contains(t, res.HTML, "color: red")
		assert.NotContains(t, res.HTML, "data-editor-id")
		assert.NotEmpty(t, res.ETag)
		assert.NotEmpty(t, res.FileName)
	})

	t.Run("Registry", func(t *testing.T) {
		var entries []editor.RegistryEntry
		callJSON(t, cs, "get_registry", sid, &entries)
		require.NotEmpty(t, entries)
		assert.Equal(t, headerID, entries[0].ID)
		assert.True(t, entries[0].Locked)
	})

	t.Run("Studio", func(t *testing.T) {
		var project studio.Project
		callJSON(t, cs, "build_studio_project", sid, &project)
		assert.Equal(t, []string{"https://example.com/main.css"}, project.Styles)
		assert.Contains(t, project.HTML, "<main")
	})

	var closed map[string]string
	callJSON(t, cs, "close_session", sid, &closed)
	assert.Equal(t, info.ID, closed["closed"])

	text, isErr := callTool(t, cs, "get_tree", sid)
	assert.True(t, isErr)
	assert.Contains(t, text, app.ErrSessionNotFound.Error())
}

func TestUnknownSession(t *testing.T) {
	cs := setupSession(t)
	for _, name := range []string{"get_tree", "get_regions", "get_selection", "export_html", "get_registry", "build_studio_project", "close_session"} {
		text, isErr := callTool(t, cs, name, map[string]any{"sessionId": "missing"})
		assert.True(t, isErr, name)
		assert.Contains(t, text, app.ErrSessionNotFound.Error(), name)
	}
}
