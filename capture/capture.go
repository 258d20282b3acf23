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

// Package capture loads a URL in headless Chrome and returns the fully
// computed DOM once the page's network activity has settled.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/gobwas/glob"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/agentberlin/webcloner/internal/framework"
)

// CapturedPage is the immutable result of one capture.
type CapturedPage struct {
	HTML        string        `json:"html"`
	SourceURL   string        `json:"url"`
	FinalURL    string        `json:"finalUrl"`
	CapturedAt  time.Time     `json:"timestamp"`
	ContentHash string        `json:"contentHash,omitempty"`
	Duration    time.Duration `json:"duration"`
	// Framework is what the page appears to be built with, judged from its
	// markup and the URLs it requested.
	Framework *framework.Detection `json:"framework,omitempty"`
}

// Capturer captures pages.
type Capturer interface {
	Capture(ctx context.Context, rawURL string) (*CapturedPage, error)
}

// TabOpener opens an isolated browser tab. The cancel func closes it.
type TabOpener interface {
	NewTab(ctx context.Context) (context.Context, context.CancelFunc, error)
}

// Service captures pages through tabs of a shared browser.
type Service struct {
	tabs    TabOpener
	cfg     Config
	blocked []glob.Glob
	sem     *semaphore.Weighted
	robots  *RobotsChecker
	logger  *zap.Logger
}

var _ Capturer = (*Service)(nil)

// New validates cfg and returns a Service.
func New(tabs TabOpener, cfg Config, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{tabs: tabs, cfg: cfg, logger: logger}
	for _, pattern := range cfg.BlockedHosts {
		g, err := glob.Compile(strings.ToLower(pattern), '.')
		if err != nil {
			return nil, fmt.Errorf("invalid blocked host pattern %q: %w", pattern, err)
		}
		s.blocked = append(s.blocked, g)
	}
	if cfg.MaxTabs > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxTabs))
	}
	if cfg.RespectRobots {
		s.robots = NewRobotsChecker(nil)
	}
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config { return s.cfg }

// Check applies every policy that can reject rawURL without a browser and
// returns the normalized URL.
func (s *Service) Check(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", &Error{URL: rawURL, Op: "validate", Err: ErrInvalidURL}
	}
	host := strings.ToLower(u.Hostname())
	for _, g := range s.blocked {
		if g.Match(host) {
			return "", &Error{URL: target, Op: "policy", Err: ErrBlockedHost}
		}
	}
	if s.robots != nil {
		allowed, err := s.robots.Allowed(ctx, target, s.cfg.UserAgent)
		if err != nil {
			s.logger.Debug("robots.txt unavailable, allowing", zap.String("url", target), zap.Error(err))
		}
		if !allowed {
			return "", &Error{URL: target, Op: "policy", Err: ErrDisallowedByRobots}
		}
	}
	return target, nil
}

// Capture renders rawURL in a new tab and returns its computed DOM. The tab
// is closed on every path.
func (s *Service) Capture(ctx context.Context, rawURL string) (*CapturedPage, error) {
	target, err := s.Check(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, &Error{URL: target, Op: "queue", Err: err}
		}
		defer s.sem.Release(1)
	}

	start := time.Now()
	tabCtx, closeTab, err := s.tabs.NewTab(ctx)
	if err != nil {
		s.logger.Error("Failed to open tab", zap.String("url", target), zap.Error(err))
		return nil, &Error{URL: target, Op: "launch", Err: err}
	}
	defer closeTab()

	// The navigation wait has its own timeout; this bounds the whole run.
	runCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout+s.cfg.SettleDelay+30*time.Second)
	defer cancel()

	waiter := newLifecycleWaiter()
	chromedp.ListenTarget(runCtx, waiter.handle)
	requests := newRequestLog(maxTrackedRequests)
	chromedp.ListenTarget(runCtx, requests.handle)

	var (
		html     string
		finalURL string
	)
	err = chromedp.Run(runCtx,
		enableLifecycle(),
		network.Enable(),
		emulation.SetUserAgentOverride(s.cfg.UserAgent),
		emulation.SetDeviceMetricsOverride(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight), 1.0, false),
		s.navigateAndWait(target, waiter),
		chromedp.Sleep(s.cfg.SettleDelay),
		extractHTML(&html),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrNavigationTimeout
		}
		s.logger.Error("Capture failed",
			zap.String("url", target),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, &Error{URL: target, Op: "render", Err: err}
	}

	result := &CapturedPage{
		HTML:       html,
		SourceURL:  target,
		FinalURL:   finalURL,
		CapturedAt: time.Now().UTC(),
		Duration:   time.Since(start),
	}
	if hash, err := ContentHash([]byte(html), s.cfg.HashAlgorithm); err == nil {
		result.ContentHash = hash
	}
	detected := framework.Detect(html, requests.urls())
	result.Framework = &detected
	s.logger.Info("Page captured",
		zap.String("url", target),
		zap.String("final_url", finalURL),
		zap.Int("bytes", len(html)),
		zap.String("framework", string(detected.Framework)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// navigateAndWait navigates and blocks until the configured lifecycle
// event fires for that navigation's loader, within the configured timeout.
func (s *Service) navigateAndWait(target string, waiter *lifecycleWaiter) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		navCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		_, loaderID, errorText, _, err := page.Navigate(target).Do(navCtx)
		if err == nil && errorText != "" {
			return fmt.Errorf("%w: %s", ErrNavigation, errorText)
		}
		if err == nil {
			err = waiter.wait(navCtx, string(loaderID), string(s.cfg.WaitUntil))
		}
		if err != nil && navCtx.Err() != nil && ctx.Err() == nil {
			return ErrNavigationTimeout
		}
		return err
	}
}

// extractHTML serializes the live document rather than the page source.
func extractHTML(out *string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		root, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err := dom.GetOuterHTML().WithNodeID(root.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		*out = html
		return nil
	}
}

func enableLifecycle() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := page.Enable().Do(ctx); err != nil {
			return err
		}
		return page.SetLifecycleEventsEnabled(true).Do(ctx)
	}
}

// lifecycleWaiter records lifecycle events per loader. It is registered
// before navigation so no event is missed.
type lifecycleWaiter struct {
	mu     sync.Mutex
	seen   map[string]map[string]bool
	notify chan struct{}
}

func newLifecycleWaiter() *lifecycleWaiter {
	return &lifecycleWaiter{seen: make(map[string]map[string]bool), notify: make(chan struct{}, 1)}
}

func (w *lifecycleWaiter) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}
	w.record(string(e.LoaderID), string(e.Name))
}

func (w *lifecycleWaiter) record(loaderID, name string) {
	w.mu.Lock()
	names := w.seen[loaderID]
	if names == nil {
		names = make(map[string]bool)
		w.seen[loaderID] = names
	}
	names[name] = true
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *lifecycleWaiter) has(loaderID, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[loaderID][name]
}

func (w *lifecycleWaiter) wait(ctx context.Context, loaderID, name string) error {
	for {
		if w.has(loaderID, name) {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
