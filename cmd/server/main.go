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

// WebCloner HTTP Server
//
// Serves page capture, the editing session API and the MCP endpoint.
//
// Usage:
//
//	webcloner-server [flags]
//
// Flags:
//
//	-config string  YAML configuration file
//	-host string    Host to bind the server to (default "0.0.0.0")
//	-port int       Port to run the server on (default 3001, or $PORT)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/internal/app"
	"github.com/agentberlin/webcloner/internal/browser"
	"github.com/agentberlin/webcloner/internal/config"
	"github.com/agentberlin/webcloner/internal/liveview"
	"github.com/agentberlin/webcloner/internal/mcp"
	"github.com/agentberlin/webcloner/internal/server"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	port := flag.Int("port", 0, "Port to run the HTTP server on (overrides config and $PORT)")
	host := flag.String("host", "", "Host to bind the HTTP server to (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("WebCloner Server %s\n", version.CurrentVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	b := browser.New(browser.Options{ExecPath: cfg.Browser.ExecPath, Headless: cfg.Browser.Headless}, logger)
	defer b.Close()

	capturer, err := capture.New(b, cfg.Capture, logger)
	if err != nil {
		return fmt.Errorf("failed to create capture service: %w", err)
	}

	st, err := store.NewStore(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.Close()

	editorCfg, err := cfg.EditorConfig()
	if err != nil {
		return err
	}
	opts := app.Options{
		Capturer:     capturer,
		Store:        st,
		Emitter:      &app.LogEmitter{Logger: logger},
		Logger:       logger,
		Editor:       editorCfg,
		SessionTTL:   cfg.Editor.SessionTTL,
		MaxSessions:  cfg.Editor.MaxSessions,
		HistoryLimit: cfg.Store.HistoryLimit,
	}
	if cfg.Editor.LiveView {
		opts.NewRenderer = liveview.Factory(b, liveview.Options{
			Width:  cfg.Capture.ViewportWidth,
			Height: cfg.Capture.ViewportHeight,
		}, logger)
	}
	coreApp := app.NewApp(opts)
	coreApp.Startup(context.Background())

	var serverOpts []server.Option
	if cfg.MCP.Enabled {
		serverOpts = append(serverOpts, server.WithMCP(cfg.MCP.Path, mcp.NewMCPServer(coreApp, logger).Handler()))
	}
	srv := server.NewServer(coreApp, cfg.Server, logger, serverOpts...)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		// Captures wait up to the navigation timeout plus the settle delay.
		WriteTimeout: cfg.Capture.Timeout + cfg.Capture.SettleDelay + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("WebCloner Server starting",
			zap.String("version", version.CurrentVersion),
			zap.String("addr", httpServer.Addr),
			zap.Bool("mcp", cfg.MCP.Enabled))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}
	if err := coreApp.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
