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

package store

// CaptureRecord is one capture attempt, successful or not.
type CaptureRecord struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	URL         string `gorm:"index;not null" json:"url"`
	FinalURL    string `json:"finalUrl,omitempty"`
	ContentHash string `gorm:"index" json:"contentHash,omitempty"`
	Framework   string `json:"framework,omitempty"`
	Bytes       int    `json:"bytes"`
	DurationMs  int64  `json:"durationMs"`
	Success     bool   `gorm:"index" json:"success"`
	Error       string `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   int64  `gorm:"autoCreateTime;index" json:"createdAt"`
}

// ExportRecord is one download of an edited page.
type ExportRecord struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"index;not null" json:"sessionId"`
	URL       string `json:"url"`
	ETag      string `json:"etag"`
	Bytes     int    `json:"bytes"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"createdAt"`
}
