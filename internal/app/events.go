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

package app

import "go.uber.org/zap"

// EventType represents the type of event
type EventType string

const (
	EventCaptureStarted   EventType = "capture:started"
	EventCaptureCompleted EventType = "capture:completed"
	EventCaptureFailed    EventType = "capture:failed"
	EventSessionOpened    EventType = "session:opened"
	EventSessionClosed    EventType = "session:closed"
	EventSessionExported  EventType = "session:exported"
)

// EventEmitter is the interface for emitting events
// Each transport layer implements this differently:
// - HTTP: access and audit logging
// - CLI: progress output
type EventEmitter interface {
	Emit(eventType EventType, data interface{})
}

// NoOpEmitter is a default implementation that does nothing
// Useful for testing or when events aren't needed
type NoOpEmitter struct{}

// Emit does nothing
func (n *NoOpEmitter) Emit(eventType EventType, data interface{}) {}

// LogEmitter writes events to a zap logger at debug level.
type LogEmitter struct {
	Logger *zap.Logger
}

// Emit logs the event.
func (l *LogEmitter) Emit(eventType EventType, data interface{}) {
	l.Logger.Debug("Event", zap.String("type", string(eventType)), zap.Any("data", data))
}
