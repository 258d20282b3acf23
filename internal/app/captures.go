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

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/internal/store"
)

// Capture renders rawURL and records the attempt in the history.
func (a *App) Capture(ctx context.Context, rawURL string) (*capture.CapturedPage, error) {
	if a.opts.Capturer == nil {
		return nil, ErrCaptureDisabled
	}
	a.opts.Emitter.Emit(EventCaptureStarted, rawURL)

	page, err := a.opts.Capturer.Capture(ctx, rawURL)
	if err != nil {
		// Rejected URLs never reached a browser and are not history.
		if !capture.IsClientError(err) {
			a.record(&store.CaptureRecord{URL: rawURL, Error: err.Error()})
		}
		a.opts.Emitter.Emit(EventCaptureFailed, map[string]string{"url": rawURL, "error": err.Error()})
		return nil, err
	}

	rec := &store.CaptureRecord{
		URL:         page.SourceURL,
		FinalURL:    page.FinalURL,
		ContentHash: page.ContentHash,
		Bytes:       len(page.HTML),
		DurationMs:  page.Duration.Milliseconds(),
		Success:     true,
	}
	if page.Framework != nil {
		rec.Framework = string(page.Framework.Framework)
	}
	a.record(rec)
	a.opts.Emitter.Emit(EventCaptureCompleted, page.SourceURL)
	return page, nil
}

func (a *App) record(rec *store.CaptureRecord) {
	if a.opts.Store == nil {
		return
	}
	if err := a.opts.Store.RecordCapture(rec); err != nil {
		a.logger.Warn("Failed to record capture", zap.String("url", rec.URL), zap.Error(err))
	}
}

// RecentCaptures returns the newest history entries. Without a store the
// history is empty.
func (a *App) RecentCaptures(limit int) ([]store.CaptureRecord, error) {
	if a.opts.Store == nil {
		return []store.CaptureRecord{}, nil
	}
	if limit <= 0 {
		limit = a.opts.HistoryLimit
	}
	return a.opts.Store.RecentCaptures(limit)
}
