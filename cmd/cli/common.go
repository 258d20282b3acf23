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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/browser"
	"github.com/agentberlin/webcloner/internal/config"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/types"
	"github.com/agentberlin/webcloner/sandbox"
)

// commonFlags are shared by every command that opens the app.
type commonFlags struct {
	configPath string
	storePath  string
	quiet      bool
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.storePath, "store", "", `Capture history database (default ~/.webcloner/history.db, ":memory:" disables)`)
	fs.BoolVar(&c.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&c.quiet, "q", false, "Suppress progress output (shorthand)")
	fs.BoolVar(&c.verbose, "verbose", false, "Log at debug level")
}

// cliApp is an App with the resources it owns.
type cliApp struct {
	*app.App
	cfg     *config.Config
	logger  *zap.Logger
	browser *browser.Browser
	store   *store.Store
}

// openApp builds an App for one command. Chrome is only launched when a
// capture needs it.
func openApp(c commonFlags) (*cliApp, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Log.Level = "warn"
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.Development = true
	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, err
	}

	dsn := c.storePath
	if dsn == "" {
		if dsn, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	st, err := store.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	b := browser.New(browser.Options{ExecPath: cfg.Browser.ExecPath, Headless: cfg.Browser.Headless}, logger)
	capturer, err := capture.New(b, cfg.Capture, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	editorCfg, err := cfg.EditorConfig()
	if err != nil {
		st.Close()
		return nil, err
	}

	a := app.NewApp(app.Options{
		Capturer:     capturer,
		Store:        st,
		Emitter:      &CLIEmitter{quiet: c.quiet},
		Logger:       logger,
		Editor:       editorCfg,
		HistoryLimit: cfg.Store.HistoryLimit,
	})
	a.Startup(context.Background())
	return &cliApp{App: a, cfg: cfg, logger: logger, browser: b, store: st}, nil
}

func (c *cliApp) Close() error {
	err := errors.Join(c.App.Shutdown(context.Background()), c.browser.Close(), c.store.Close())
	c.logger.Sync()
	return err
}

// openSession opens a session on target, which is a URL to capture or a
// local HTML file loaded against baseURL.
func (c *cliApp) openSession(ctx context.Context, target, baseURL string) (*editor.Session, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return c.OpenSession(ctx, types.OpenSessionRequest{URL: target})
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, fmt.Errorf("--base-url is required when reading %s from disk", target)
	}
	src, err := sandbox.Decode(raw, "")
	if err != nil {
		return nil, err
	}
	return c.OpenSession(ctx, types.OpenSessionRequest{URL: baseURL, HTML: src})
}

// CLIEmitter prints capture progress to stderr.
type CLIEmitter struct {
	quiet bool
}

// Emit prints the event unless quiet.
func (e *CLIEmitter) Emit(eventType app.EventType, data interface{}) {
	if e.quiet {
		return
	}
	switch eventType {
	case app.EventCaptureStarted:
		fmt.Fprintf(os.Stderr, "Capturing %v...\n", data)
	case app.EventCaptureFailed:
		if m, ok := data.(map[string]string); ok {
			fmt.Fprintf(os.Stderr, "Capture of %s failed: %s\n", m["url"], m["error"])
		}
	}
}
