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

package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTabAfterClose(t *testing.T) {
	b := New(DefaultOptions(), nil)
	require.NoError(t, b.Close())
	_, _, err := b.NewTab(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, b.Running())
}

func TestLocateHonorsEnv(t *testing.T) {
	t.Setenv("CHROME_EXECUTABLE_PATH", "/nonexistent/chrome")
	// A missing override falls through to discovery.
	assert.NotEqual(t, "/nonexistent/chrome", Locate())
}

func TestConcurrentLaunchSharesProcess(t *testing.T) {
	if !Available() {
		t.Skip("Chrome not available")
	}
	b := New(DefaultOptions(), nil)
	defer b.Close()

	var wg sync.WaitGroup
	contexts := make([]context.Context, 4)
	for i := range contexts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, err := b.context()
			if err == nil {
				contexts[i] = ctx
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, contexts[0])
	for _, ctx := range contexts[1:] {
		assert.Equal(t, contexts[0], ctx, "every caller gets the same browser")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tab, closeTab, err := b.NewTab(ctx)
	require.NoError(t, err)
	defer closeTab()

	var title string
	require.NoError(t, chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.Title(&title),
	))
	assert.True(t, b.Running())
}
