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

// Package browser owns the headless Chrome process shared by every capture
// and live editing tab.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by NewTab after Close.
var ErrClosed = errors.New("browser closed")

// Options configure the Chrome process.
type Options struct {
	// ExecPath overrides Chrome discovery. Empty uses Locate.
	ExecPath string
	Headless bool
	// Flags are extra command line switches.
	Flags map[string]any
}

// DefaultOptions returns options for a headless process honoring
// CHROME_EXECUTABLE_PATH.
func DefaultOptions() Options {
	return Options{ExecPath: os.Getenv("CHROME_EXECUTABLE_PATH"), Headless: true}
}

// Browser lazily launches one Chrome process on first use and relaunches it
// if it died. Concurrent first callers share a single launch.
type Browser struct {
	opts   Options
	logger *zap.Logger
	group  singleflight.Group

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New returns a Browser that has not been launched yet.
func New(opts Options, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{opts: opts, logger: logger}
}

// NewTab opens a tab in a fresh browser context, isolated from every other
// tab's cookies and storage. The returned cancel func closes the tab and
// must always be called; canceling ctx closes it too.
func (b *Browser) NewTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	bctx, err := b.context()
	if err != nil {
		return nil, nil, err
	}
	tabCtx, cancel := chromedp.NewContext(bctx, chromedp.WithNewBrowserContext())
	stop := context.AfterFunc(ctx, cancel)
	return tabCtx, func() {
		stop()
		cancel()
	}, nil
}

// context returns the live browser context, launching Chrome if needed.
func (b *Browser) context() (context.Context, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		ctx := b.browserCtx
		b.mu.Unlock()
		return ctx, nil
	}
	b.mu.Unlock()

	v, err, _ := b.group.Do("launch", func() (any, error) {
		return b.launch()
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

func (b *Browser) launch() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}
	b.releaseLocked()

	path := b.opts.ExecPath
	if path == "" {
		path = Locate()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	for name, value := range b.opts.Flags {
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// Running an empty action list starts the process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		b.logger.Error("Failed to launch browser", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.logger.Info("Browser launched", zap.String("path", path))
	return browserCtx, nil
}

// Running reports whether a browser process is currently alive.
func (b *Browser) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browserCtx != nil && b.browserCtx.Err() == nil
}

// Close terminates the browser process. It is safe to call more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.releaseLocked()
	return nil
}

func (b *Browser) releaseLocked() {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.browserCtx = nil
}

// Locate returns the path of an installed Chrome or Chromium, or "" when
// none is found. CHROME_EXECUTABLE_PATH takes precedence.
func Locate() string {
	if customPath := os.Getenv("CHROME_EXECUTABLE_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath
		}
	}

	var chromePaths []string
	switch runtime.GOOS {
	case "darwin":
		chromePaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			os.Getenv("HOME") + "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		chromePaths = []string{
			os.Getenv("ProgramFiles") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("ProgramFiles(x86)") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("LocalAppData") + "\\Google\\Chrome\\Application\\chrome.exe",
		}
	case "linux":
		chromePaths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Available reports whether Chrome can be found.
func Available() bool {
	return Locate() != ""
}
