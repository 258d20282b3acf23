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

// Package neutralize disables the background activity of a loaded foreign
// document. It is a best-effort policy layer applied by patching page
// globals, not a security boundary.
package neutralize

import (
	"fmt"
	"sort"
	"strings"
)

// Capability is one page primitive the policy can disable.
type Capability string

const (
	Fetch         Capability = "fetch"
	XHR           Capability = "xhr"
	Beacon        Capability = "beacon"
	Timers        Capability = "timers"
	WebSocket     Capability = "websocket"
	EventSource   Capability = "eventsource"
	ResourceLoads Capability = "resource-loads"
	Navigation    Capability = "navigation"
)

// order fixes the sequence in which patches are emitted.
var order = []Capability{Fetch, XHR, Beacon, Timers, WebSocket, EventSource, ResourceLoads, Navigation}

var patches = map[Capability]string{
	Fetch: `window.fetch = function () {
  return Promise.reject(new Error('Network requests are disabled'));
};`,
	XHR: `XMLHttpRequest.prototype.open = function () {};
XMLHttpRequest.prototype.send = function () {};
XMLHttpRequest.prototype.setRequestHeader = function () {};`,
	Beacon: `if (navigator.sendBeacon) { navigator.sendBeacon = function () { return false; }; }`,
	Timers: `window.setTimeout = function () { return 0; };
window.setInterval = function () { return 0; };
window.requestAnimationFrame = function () { return 0; };`,
	WebSocket: `window.WebSocket = function () { throw new Error('WebSocket is disabled'); };`,
	EventSource: `window.EventSource = function () { throw new Error('EventSource is disabled'); };`,
	ResourceLoads: `[[HTMLImageElement, 'src'], [HTMLLinkElement, 'href'], [HTMLScriptElement, 'src'], [HTMLIFrameElement, 'src']].forEach(function (p) {
  Object.defineProperty(p[0].prototype, p[1], { set: function () {}, configurable: true });
});`,
	Navigation: `window.open = function () { return null; };
window.location.assign = function () {};
window.location.replace = function () {};
window.addEventListener('beforeunload', function (e) { e.preventDefault(); }, true);
document.addEventListener('submit', function (e) { e.preventDefault(); }, true);`,
}

// All returns every known capability in emission order.
func All() []Capability {
	return append([]Capability(nil), order...)
}

// ParseCapability validates a configuration value.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := patches[c]; !ok {
		return "", fmt.Errorf("unknown capability %q", s)
	}
	return c, nil
}

// Policy is the set of capabilities to disable.
type Policy struct {
	Capabilities []Capability
}

// DefaultPolicy disables every capability.
func DefaultPolicy() Policy {
	return Policy{Capabilities: All()}
}

// Has reports whether c is disabled by p.
func (p Policy) Has(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Names returns the disabled capabilities sorted by name.
func (p Policy) Names() []string {
	names := make([]string, 0, len(p.Capabilities))
	for _, c := range p.Capabilities {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// Script returns the JavaScript applying p, one try block per patch. An
// empty policy yields an empty script.
func (p Policy) Script() string {
	var b strings.Builder
	for _, c := range order {
		if !p.Has(c) {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("(function () {\n")
		}
		fmt.Fprintf(&b, "try {\n%s\n} catch (e) {} // %s\n", patches[c], c)
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("})();")
	return b.String()
}
