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
	"errors"
	"fmt"
)

var (
	ErrNotLoaded      = errors.New("no document loaded")
	ErrUnknownElement = errors.New("unknown element")
	ErrLocked         = errors.New("element is locked")
	ErrNoSelection    = errors.New("no element selected")
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidStyle   = errors.New("invalid style property")
	ErrClosed         = errors.New("session closed")
)

// OperationError reports an editor operation that failed. The session stays
// usable and its document is unchanged by the failed operation.
type OperationError struct {
	Op        string
	ElementID string
	Err       error
}

func (e *OperationError) Error() string {
	if e.ElementID == "" {
		return fmt.Sprintf("editor %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("editor %s %s: %v", e.Op, e.ElementID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
