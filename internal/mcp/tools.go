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
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/framework"
	"github.com/agentberlin/webcloner/internal/types"
)

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() {
	// Capture tools
	s.registerCapturePageTool()
	s.registerRecentCapturesTool()

	// Session management tools
	s.registerOpenSessionTool()
	s.registerListSessionsTool()
	s.registerCloseSessionTool()

	// Structure tools
	s.registerGetTreeTool()
	s.registerGetRegionsTool()
	s.registerMoveElementTool()
	s.registerToggleLockTool()
	s.registerToggleExpandTool()

	// Selection and style tools
	s.registerHoverElementTool()
	s.registerSelectElementTool()
	s.registerGetSelectionTool()
	s.registerSetStyleTool()

	// Output tools
	s.registerExportHTMLTool()
	s.registerGetRegistryTool()
	s.registerBuildStudioProjectTool()

	s.logger.Debug("All MCP tools registered")
}

// jsonResult renders v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *MCPServer) session(id string) (*editor.Session, error) {
	return s.app.Session(id)
}

// CapturePageArgs defines the input schema for capture_page tool
type CapturePageArgs struct {
	URL         string `json:"url" jsonschema:"absolute http or https URL to capture"`
	IncludeHTML bool   `json:"includeHtml,omitempty" jsonschema:"return the captured HTML, which can be large"`
}

// CapturePageResult defines the output of capture_page tool
type CapturePageResult struct {
	URL         string `json:"url"`
	FinalURL    string `json:"finalUrl"`
	ContentHash string `json:"contentHash"`
	Bytes       int    `json:"bytes"`
	DurationMs  int64  `json:"durationMs"`
	// Framework is what the page appears to be built with.
	Framework *framework.Detection `json:"framework,omitempty"`
	HTML      string               `json:"html,omitempty"`
}

func (s *MCPServer) registerCapturePageTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "capture_page",
		Description: "Renders a URL in headless Chrome and returns the computed DOM once network activity settles",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CapturePageArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Info("Tool called", zap.String("tool", "capture_page"), zap.String("url", args.URL))
		page, err := s.app.Capture(ctx, args.URL)
		if err != nil {
			return nil, nil, err
		}
		res := CapturePageResult{
			URL:         page.SourceURL,
			FinalURL:    page.FinalURL,
			ContentHash: page.ContentHash,
			Bytes:       len(page.HTML),
			DurationMs:  page.Duration.Milliseconds(),
			Framework:   page.Framework,
		}
		if args.IncludeHTML {
			res.HTML = page.HTML
		}
		return jsonResult(res)
	})
}

// RecentCapturesArgs defines the input schema for recent_captures tool
type RecentCapturesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries, newest first"`
}

func (s *MCPServer) registerRecentCapturesTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_captures",
		Description: "Lists recent capture attempts with their outcome",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RecentCapturesArgs) (*mcp.CallToolResult, any, error) {
		records, err := s.app.RecentCaptures(args.Limit)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(records)
	})
}

// OpenSessionArgs defines the input schema for open_session tool
type OpenSessionArgs struct {
	URL  string `json:"url" jsonschema:"page URL; captured unless html is given, otherwise the base for relative references"`
	HTML string `json:"html,omitempty" jsonschema:"document to edit instead of capturing url"`
}

func (s *MCPServer) registerOpenSessionTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "open_session",
		Description: "Opens an editing session on a captured or provided page and returns its id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OpenSessionArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Info("Tool called", zap.String("tool", "open_session"), zap.String("url", args.URL))
		sess, err := s.app.OpenSession(ctx, types.OpenSessionRequest{URL: args.URL, HTML: args.HTML})
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(sess.Info())
	})
}

// NoArgs is the input of tools without parameters.
type NoArgs struct{}

func (s *MCPServer) registerListSessionsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "Lists open editing sessions, most recently used first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		return jsonResult(s.app.Sessions())
	})
}

// SessionArgs names a session.
type SessionArgs struct {
	SessionID string `json:"sessionId" jsonschema:"id returned by open_session"`
}

func (s *MCPServer) registerCloseSessionTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "close_session",
		Description: "Closes an editing session and releases its browser tab",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		if err := s.app.CloseSession(args.SessionID); err != nil {
			return nil, nil, err
		}
		return jsonResult(map[string]string{"closed": args.SessionID})
	})
}

func (s *MCPServer) registerGetTreeTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_tree",
		Description: "Returns the structure tree of the session's document with expand, lock and selection state",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		tree, err := sess.View()
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(tree)
	})
}

func (s *MCPServer) registerGetRegionsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_regions",
		Description: "Returns the document grouped by page region (section, div, header, footer, article, aside, nav)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		root, err := sess.Regions()
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(root)
	})
}

// MoveElementArgs defines the input schema for move_element tool
type MoveElementArgs struct {
	SessionID string `json:"sessionId"`
	DragID    string `json:"dragId" jsonschema:"element to move"`
	TargetID  string `json:"targetId" jsonschema:"element to move next to"`
	Position  string `json:"position" jsonschema:"before or after"`
}

func (s *MCPServer) registerMoveElementTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "move_element",
		Description: "Moves an element before or after another element and returns the updated tree",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MoveElementArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		pos, err := editor.ParsePosition(args.Position)
		if err != nil {
			return nil, nil, err
		}
		if err := sess.Drop(ctx, args.DragID, args.TargetID, pos); err != nil {
			return nil, nil, err
		}
		tree, err := sess.View()
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(tree)
	})
}

// ElementArgs names an element of a session.
type ElementArgs struct {
	SessionID string `json:"sessionId"`
	ElementID string `json:"elementId" jsonschema:"editor id such as editable-element-3"`
}

func (s *MCPServer) registerToggleLockTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toggle_lock",
		Description: "Locks or unlocks an element against being moved",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ElementArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		locked, err := sess.ToggleLock(args.ElementID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(types.ToggleResponse{ID: args.ElementID, State: locked})
	})
}

func (s *MCPServer) registerToggleExpandTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toggle_expand",
		Description: "Collapses or expands a node of the structure tree",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ElementArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		expanded, err := sess.ToggleExpand(args.ElementID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(types.ToggleResponse{ID: args.ElementID, State: expanded})
	})
}

func (s *MCPServer) registerHoverElementTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "hover_element",
		Description: "Highlights an element as hovered; an empty elementId ends the hover",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ElementArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		if args.ElementID == "" {
			err = sess.PointerLeave(ctx)
		} else {
			err = sess.Hover(ctx, args.ElementID)
		}
		if err != nil {
			return nil, nil, err
		}
		return s.selection(sess)
	})
}

func (s *MCPServer) registerSelectElementTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_element",
		Description: "Selects an element and returns its tag, inline style and text; an empty elementId clears the selection",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ElementArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		if args.ElementID == "" {
			err = sess.ClearSelection(ctx)
		} else {
			err = sess.Select(ctx, args.ElementID)
		}
		if err != nil {
			return nil, nil, err
		}
		return s.selection(sess)
	})
}

func (s *MCPServer) registerGetSelectionTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_selection",
		Description: "Returns the hovered and selected elements",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		return s.selection(sess)
	})
}

func (s *MCPServer) selection(sess *editor.Session) (*mcp.CallToolResult, any, error) {
	sel, err := sess.Selection()
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(sel)
}

// SetStyleArgs defines the input schema for set_style tool
type SetStyleArgs struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name" jsonschema:"CSS property name"`
	Value     string `json:"value" jsonschema:"CSS value; empty removes the property"`
}

func (s *MCPServer) registerSetStyleTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_style",
		Description: "Sets an inline style property on the selected element",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetStyleArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		if err := sess.SetProperty(ctx, args.Name, args.Value); err != nil {
			return nil, nil, err
		}
		return s.selection(sess)
	})
}

// ExportHTMLResult defines the output of export_html tool
type ExportHTMLResult struct {
	FileName string `json:"fileName"`
	ETag     string `json:"etag"`
	HTML     string `json:"html"`
}

func (s *MCPServer) registerExportHTMLTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_html",
		Description: "Serializes the edited page as a standalone HTML document",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		res, err := s.app.Export(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(ExportHTMLResult{FileName: res.FileName, ETag: res.ETag, HTML: res.HTML})
	})
}

func (s *MCPServer) registerGetRegistryTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_registry",
		Description: "Lists every indexed element with its outer HTML, rank and lock flag",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		sess, err := s.session(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		entries, err := sess.Registry()
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(entries)
	})
}

func (s *MCPServer) registerBuildStudioProjectTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_studio_project",
		Description: "Builds a page-builder project (body HTML, minified CSS, external assets) from the edited page",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		project, err := s.app.Studio(args.SessionID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(project)
	})
}
