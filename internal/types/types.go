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

package types

import (
	"time"

	"github.com/agentberlin/webcloner/internal/framework"
)

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CrawlRequest asks for one page capture.
type CrawlRequest struct {
	URL string `json:"url"`
}

// CrawlResponse carries a captured page or the reason it failed.
type CrawlResponse struct {
	Success     bool                 `json:"success"`
	HTML        string               `json:"html,omitempty"`
	URL         string               `json:"url"`
	FinalURL    string               `json:"finalUrl,omitempty"`
	ContentHash string               `json:"contentHash,omitempty"`
	Framework   *framework.Detection `json:"framework,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
	Error       string               `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-crawl error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SystemHealthCheck reports whether the capture dependencies are present.
type SystemHealthCheck struct {
	IsHealthy  bool   `json:"isHealthy"`
	ErrorTitle string `json:"errorTitle,omitempty"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// OpenSessionRequest opens an editing session from a URL to capture or
// from HTML the caller already has.
type OpenSessionRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// PointerRequest forwards one pointer event.
type PointerRequest struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ElementRequest names one element.
type ElementRequest struct {
	ID string `json:"id"`
}

// DropRequest moves DragID before or after TargetID. Position may be
// omitted when OffsetY and RowHeight describe where the drop landed in the
// target's tree row.
type DropRequest struct {
	DragID    string  `json:"dragId"`
	TargetID  string  `json:"targetId"`
	Position  string  `json:"position,omitempty"`
	OffsetY   float64 `json:"offsetY,omitempty"`
	RowHeight float64 `json:"rowHeight,omitempty"`
}

// StyleRequest sets one inline style property on the selection.
type StyleRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ToggleResponse reports the state after a toggle.
type ToggleResponse struct {
	ID    string `json:"id"`
	State bool   `json:"state"`
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}
