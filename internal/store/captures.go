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

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultHistoryLimit caps RecentCaptures when no limit is given.
const DefaultHistoryLimit = 50

// RecordCapture saves a capture attempt.
func (s *Store) RecordCapture(rec *CaptureRecord) error {
	if rec.URL == "" {
		return fmt.Errorf("failed to record capture: url is required")
	}
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record capture: %v", err)
	}
	return nil
}

// RecentCaptures returns the newest captures first. A limit <= 0 uses
// DefaultHistoryLimit.
func (s *Store) RecentCaptures(limit int) ([]CaptureRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var records []CaptureRecord
	result := s.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get captures: %v", result.Error)
	}
	return records, nil
}

// GetCapture gets a capture by ID. It returns nil, nil when none exists.
func (s *Store) GetCapture(id uint) (*CaptureRecord, error) {
	var rec CaptureRecord
	result := s.db.First(&rec, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get capture: %v", result.Error)
	}
	return &rec, nil
}

// LatestCaptureForURL gets the most recent successful capture of url.
func (s *Store) LatestCaptureForURL(url string) (*CaptureRecord, error) {
	var rec CaptureRecord
	result := s.db.Where("url = ? AND success = ?", url, true).Order("created_at DESC").Order("id DESC").First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest capture: %v", result.Error)
	}
	return &rec, nil
}

// PruneCaptures deletes captures older than maxAge and returns how many
// were removed.
func (s *Store) PruneCaptures(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	result := s.db.Where("created_at < ?", cutoff).Delete(&CaptureRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune captures: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// RecordExport saves an export.
func (s *Store) RecordExport(rec *ExportRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record export: %v", err)
	}
	return nil
}

// SessionExports returns a session's exports, oldest first.
func (s *Store) SessionExports(sessionID string) ([]ExportRecord, error) {
	var records []ExportRecord
	result := s.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get exports: %v", result.Error)
	}
	return records, nil
}
