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

package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
)

// Result is the outcome of one URL of a batch.
type Result struct {
	URL      string
	Page     *capture.CapturedPage
	Err      error
	Duration time.Duration
}

// Capture captures every URL with at most workers captures in flight and
// returns results in input order. URLs not started before ctx ends carry
// the context error. onDone, when set, is called as each capture finishes
// and may be called concurrently.
func Capture(ctx context.Context, c capture.Capturer, urls []string, workers int, logger *zap.Logger, onDone func(Result)) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]Result, len(urls))
	for i, u := range urls {
		results[i] = Result{URL: u}
	}

	pool := NewWorkerPool(ctx, workers, workers)
	started := make([]bool, len(urls))
	for i := range urls {
		i := i
		err := pool.Submit(func() {
			started[i] = true
			start := time.Now()
			page, err := c.Capture(ctx, urls[i])
			results[i].Page, results[i].Err, results[i].Duration = page, err, time.Since(start)
			if err != nil {
				logger.Warn("Batch capture failed", zap.String("url", urls[i]), zap.Error(err))
			}
			if onDone != nil {
				onDone(results[i])
			}
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	for i := range results {
		if !started[i] {
			results[i].Err = context.Cause(ctx)
			if results[i].Err == nil {
				results[i].Err = context.Canceled
			}
		}
	}
	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
