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

package capture

import (
	"sync"

	"github.com/chromedp/cdproto/network"
)

// maxTrackedRequests bounds the request URLs kept per capture.
const maxTrackedRequests = 500

// requestLog records the URLs a page requested while it loaded.
type requestLog struct {
	mu   sync.Mutex
	max  int
	seen map[string]bool
	list []string
}

func newRequestLog(max int) *requestLog {
	return &requestLog{max: max, seen: make(map[string]bool)}
}

func (l *requestLog) handle(ev interface{}) {
	e, ok := ev.(*network.EventRequestWillBeSent)
	if !ok || e.Request == nil {
		return
	}
	l.add(e.Request.URL)
}

func (l *requestLog) add(u string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u == "" || l.seen[u] || len(l.list) >= l.max {
		return
	}
	l.seen[u] = true
	l.list = append(l.list, u)
}

func (l *requestLog) urls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.list...)
}
