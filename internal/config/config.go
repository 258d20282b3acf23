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

// Package config loads the server configuration from an optional YAML file,
// then applies environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/agentberlin/webcloner/capture"
	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/indexer"
	"github.com/agentberlin/webcloner/internal/store"
	"github.com/agentberlin/webcloner/neutralize"
	"github.com/agentberlin/webcloner/sandbox"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Browser BrowserConfig  `yaml:"browser"`
	Capture capture.Config `yaml:"capture"`
	Editor  EditorConfig   `yaml:"editor"`
	Store   StoreConfig    `yaml:"store"`
	MCP     MCPConfig      `yaml:"mcp"`
	Log     LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	CORSOrigin      string        `yaml:"cors_origin"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	RateLimitMax    int           `yaml:"rate_limit_max"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrowserConfig controls the shared Chrome process.
type BrowserConfig struct {
	ExecPath string `yaml:"exec_path"`
	Headless bool   `yaml:"headless"`
}

// EditorConfig controls editing sessions.
type EditorConfig struct {
	NeutralizeDelay time.Duration `yaml:"neutralize_delay"`
	TreeMode        string        `yaml:"tree_mode"`
	LockPolicy      string        `yaml:"lock_policy"`
	// Capabilities lists what the neutralizer disables. Empty means all.
	Capabilities   []string      `yaml:"capabilities"`
	BaselineScript string        `yaml:"baseline_script"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	MaxSessions    int           `yaml:"max_sessions"`
	// LiveView renders sessions in Chrome. Without it sessions are
	// document-only and pointer hit tests find nothing.
	LiveView bool `yaml:"live_view"`
}

// StoreConfig controls the capture history.
type StoreConfig struct {
	DSN          string `yaml:"dsn"`
	HistoryLimit int    `yaml:"history_limit"`
}

// MCPConfig controls the MCP endpoint mounted on the HTTP server.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			CORSOrigin:      "*",
			RateLimitWindow: 15 * time.Minute,
			RateLimitMax:    100,
			MaxBodyBytes:    10 << 20,
			ShutdownTimeout: 15 * time.Second,
		},
		Browser: BrowserConfig{Headless: true},
		Capture: capture.DefaultConfig(),
		Editor: EditorConfig{
			NeutralizeDelay: neutralize.DefaultDelay,
			TreeMode:        indexer.ModeStructural.String(),
			LockPolicy:      string(editor.LockStrict),
			BaselineScript:  sandbox.DefaultBaselineScript,
			SessionTTL:      30 * time.Minute,
			MaxSessions:     32,
			LiveView:        true,
		},
		Store: StoreConfig{DSN: store.MemoryDSN, HistoryLimit: store.DefaultHistoryLimit},
		MCP:   MCPConfig{Enabled: true, Path: "/mcp"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PORT, CORS_ORIGIN and
// CHROME_EXECUTABLE_PATH.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("CORS_ORIGIN"); v != "" {
		c.Server.CORSOrigin = v
	}
	if v := getenv("CHROME_EXECUTABLE_PATH"); v != "" {
		c.Browser.ExecPath = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.RateLimitWindow <= 0 || c.Server.RateLimitMax <= 0 {
		return fmt.Errorf("rate limit window and max must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if err := c.Capture.Validate(); err != nil {
		return err
	}
	if _, err := c.EditorConfig(); err != nil {
		return err
	}
	if c.Editor.SessionTTL < 0 {
		return fmt.Errorf("session ttl cannot be negative")
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("mcp path must start with /")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Build returns a JSON production logger, or a console logger in
// development mode, at the configured level.
func (l LogConfig) Build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// EditorConfig converts the editor section into session settings.
func (c *Config) EditorConfig() (editor.Config, error) {
	ec := editor.DefaultConfig()
	mode, err := indexer.ParseMode(c.Editor.TreeMode)
	if err != nil {
		return ec, err
	}
	policy, err := editor.ParseLockPolicy(c.Editor.LockPolicy)
	if err != nil {
		return ec, err
	}
	if c.Editor.NeutralizeDelay < 0 {
		return ec, fmt.Errorf("neutralize delay cannot be negative")
	}
	ec.TreeMode = mode
	ec.LockPolicy = policy
	if c.Editor.NeutralizeDelay > 0 {
		ec.NeutralizeDelay = c.Editor.NeutralizeDelay
	}
	if len(c.Editor.Capabilities) > 0 {
		var caps []neutralize.Capability
		for _, name := range c.Editor.Capabilities {
			cp, err := neutralize.ParseCapability(name)
			if err != nil {
				return ec, err
			}
			caps = append(caps, cp)
		}
		ec.Policy = neutralize.Policy{Capabilities: caps}
	}
	if c.Editor.BaselineScript != "" {
		ec.Sandbox.BaselineScript = c.Editor.BaselineScript
	}
	return ec, nil
}
