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
	"fmt"
	"time"
)

// DefaultUserAgent is a current desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// WaitUntil names the page lifecycle event a capture waits for.
type WaitUntil string

const (
	WaitLoad              WaitUntil = "load"
	WaitDOMContentLoaded  WaitUntil = "DOMContentLoaded"
	WaitNetworkIdle       WaitUntil = "networkIdle"
	WaitNetworkAlmostIdle WaitUntil = "networkAlmostIdle"
)

// Config controls a capture Service.
type Config struct {
	// Timeout bounds navigation until the wait event fires.
	Timeout time.Duration `yaml:"timeout"`
	// SettleDelay is waited after the wait event so late scripts can paint.
	SettleDelay    time.Duration `yaml:"settle_delay"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	UserAgent      string        `yaml:"user_agent"`
	WaitUntil      WaitUntil     `yaml:"wait_until"`
	// MaxTabs limits concurrent captures. Zero means unlimited.
	MaxTabs int `yaml:"max_tabs"`
	// BlockedHosts are glob patterns such as "*.internal" or "localhost".
	BlockedHosts  []string `yaml:"blocked_hosts"`
	RespectRobots bool     `yaml:"respect_robots"`
	HashAlgorithm string   `yaml:"hash_algorithm"`
}

// DefaultConfig returns the settings of a plain desktop browser visit.
func DefaultConfig() Config {
	return Config{
		Timeout:        60 * time.Second,
		SettleDelay:    2 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		UserAgent:      DefaultUserAgent,
		WaitUntil:      WaitNetworkAlmostIdle,
		MaxTabs:        8,
		HashAlgorithm:  "xxhash",
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("capture timeout must be positive")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("capture settle delay cannot be negative")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.MaxTabs < 0 {
		return fmt.Errorf("max tabs cannot be negative")
	}
	switch c.WaitUntil {
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle, WaitNetworkAlmostIdle:
	default:
		return fmt.Errorf("unknown wait_until %q", c.WaitUntil)
	}
	return nil
}
