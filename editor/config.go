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

package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentberlin/webcloner/indexer"
	"github.com/agentberlin/webcloner/neutralize"
	"github.com/agentberlin/webcloner/sandbox"
)

// LockPolicy decides which drops a lock forbids.
type LockPolicy string

const (
	// LockStrict forbids dragging a locked node, dragging a node out of a
	// locked subtree and dropping next to a node inside a locked subtree.
	LockStrict LockPolicy = "strict"
	// LockSourceOnly only forbids dragging locked nodes and their subtrees.
	LockSourceOnly LockPolicy = "source-only"
)

// ParseLockPolicy validates a configuration value.
func ParseLockPolicy(s string) (LockPolicy, error) {
	switch p := LockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LockStrict, nil
	case LockStrict, LockSourceOnly:
		return p, nil
	}
	return "", fmt.Errorf("unknown lock policy %q", s)
}

// Config holds the per-session editor settings.
type Config struct {
	TreeMode        indexer.Mode
	LockPolicy      LockPolicy
	NeutralizeDelay time.Duration
	Policy          neutralize.Policy
	Sandbox         sandbox.Options
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		TreeMode:        indexer.ModeStructural,
		LockPolicy:      LockStrict,
		NeutralizeDelay: neutralize.DefaultDelay,
		Policy:          neutralize.DefaultPolicy(),
		Sandbox:         sandbox.DefaultOptions(),
	}
}
