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
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecentCaptures(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()

	for i, url := range []string{"https://a.example/", "https://b.example/", "https://c.example/"} {
		rec := &CaptureRecord{URL: url, Success: true, Bytes: 100 * (i + 1), CreatedAt: now + int64(i)}
		if err := store.RecordCapture(rec); err != nil {
			t.Fatalf("RecordCapture() failed: %v", err)
		}
		if rec.ID == 0 {
			t.Fatalf("RecordCapture() did not assign an ID")
		}
	}

	t.Run("NewestFirst", func(t *testing.T) {
		records, err := store.RecentCaptures(0)
		if err != nil {
			t.Fatalf("RecentCaptures() failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		if records[0].URL != "https://c.example/" {
			t.Errorf("Expected newest capture first, got %s", records[0].URL)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		records, err := store.RecentCaptures(2)
		if err != nil {
			t.Fatalf("RecentCaptures() failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}
	})
}

func TestRecordCaptureRequiresURL(t *testing.T) {
	store := newTestStore(t)
	if err := store.RecordCapture(&CaptureRecord{}); err == nil {
		t.Error("RecordCapture() should reject a record without a URL")
	}
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)

	if err := a.RecordCapture(&CaptureRecord{URL: "https://a.example/"}); err != nil {
		t.Fatalf("RecordCapture() failed: %v", err)
	}
	records, err := b.RecentCaptures(0)
	if err != nil {
		t.Fatalf("RecentCaptures() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected an empty second store, got %d records", len(records))
	}
}

func TestLatestCaptureForURL(t *testing.T) {
	store := newTestStore(t)
	url := "https://example.com/"

	rec, err := store.LatestCaptureForURL(url)
	if err != nil || rec != nil {
		t.Fatalf("Expected nil, nil for unknown url, got %v, %v", rec, err)
	}

	store.RecordCapture(&CaptureRecord{URL: url, Success: true, ContentHash: "old", CreatedAt: 100})
	store.RecordCapture(&CaptureRecord{URL: url, Success: true, ContentHash: "new", CreatedAt: 200})
	store.RecordCapture(&CaptureRecord{URL: url, Success: false, Error: "timeout", CreatedAt: 300})

	rec, err = store.LatestCaptureForURL(url)
	if err != nil {
		t.Fatalf("LatestCaptureForURL() failed: %v", err)
	}
	if rec == nil || rec.ContentHash != "new" {
		t.Errorf("Expected the newest successful capture, got %+v", rec)
	}

	got, err := store.GetCapture(rec.ID)
	if err != nil || got == nil || got.URL != url {
		t.Errorf("GetCapture() = %+v, %v", got, err)
	}
	missing, err := store.GetCapture(999999)
	if err != nil || missing != nil {
		t.Errorf("GetCapture() for missing id = %+v, %v", missing, err)
	}
}

func TestPruneCaptures(t *testing.T) {
	store := newTestStore(t)
	old := time.Now().Add(-48 * time.Hour).Unix()

	store.RecordCapture(&CaptureRecord{URL: "https://old.example/", CreatedAt: old})
	store.RecordCapture(&CaptureRecord{URL: "https://new.example/"})

	n, err := store.PruneCaptures(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneCaptures() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned record, got %d", n)
	}
	records, _ := store.RecentCaptures(0)
	if len(records) != 1 || records[0].URL != "https://new.example/" {
		t.Errorf("Unexpected records after prune: %+v", records)
	}
}

func TestSessionExports(t *testing.T) {
	store := newTestStore(t)
	for _, etag := range []string{"a", "b"} {
		if err := store.RecordExport(&ExportRecord{SessionID: "s1", URL: "https://example.com/", ETag: etag}); err != nil {
			t.Fatalf("RecordExport() failed: %v", err)
		}
	}
	store.RecordExport(&ExportRecord{SessionID: "s2", ETag: "c"})

	records, err := store.SessionExports("s1")
	if err != nil {
		t.Fatalf("SessionExports() failed: %v", err)
	}
	if len(records) != 2 || records[0].ETag != "a" || records[1].ETag != "b" {
		t.Errorf("Unexpected exports: %+v", records)
	}
}

func TestFileStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.RecordCapture(&CaptureRecord{URL: "https://example.com/", Success: true}); err != nil {
		t.Fatalf("RecordCapture() failed: %v", err)
	}
	store.Close()

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.RecentCaptures(0)
	if err != nil {
		t.Fatalf("RecentCaptures() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected the capture to persist, got %d records", len(records))
	}
}
