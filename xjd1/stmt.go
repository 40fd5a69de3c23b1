// Copyright © 2016 Abcum Ltd
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

package xjd1

import (
	"context"

	"github.com/xjd1/xjd1/stmt"
)

// StepResult is the outcome of one Stmt.Step call.
type StepResult = stmt.StepResult

// Done and Row re-export stmt's step outcomes at the public surface.
const (
	Done = stmt.Done
	Row  = stmt.Row
)

// Stmt is a prepared statement bound to the Conn that produced it via
// Prepare. It is a thin wrapper over stmt.Stmt that also threads
// errors back to its Conn's LastError slot.
type Stmt struct {
	conn  *Conn
	inner *stmt.Stmt
}

// Text returns the statement's own source text, as consumed at
// Prepare.
func (s *Stmt) Text() string { return s.inner.Text() }

// Step runs the statement one increment using context.Background; see
// StepContext to pass a cancelable context.
func (s *Stmt) Step() (StepResult, error) {
	return s.StepContext(context.Background())
}

// StepContext is Step with an explicit context. The context is passed
// to the storage backend's calls; the query pipeline itself does no
// cancellation checks.
func (s *Stmt) StepContext(ctx context.Context) (StepResult, error) {
	res, err := s.inner.Step(ctx)
	if err != nil {
		s.conn.setLastErr(err)
	}
	return res, err
}

// Value returns the most recently produced result row as rendered
// JSON text, or "" for a command kind that never produces one.
func (s *Stmt) Value() string { return s.inner.Value() }

// Rewind resets the statement to its just-prepared state.
func (s *Stmt) Rewind() error {
	err := s.inner.Rewind()
	if err != nil {
		s.conn.setLastErr(err)
	}
	return err
}

// Close releases the statement's resources. A Stmt must not be used
// again after Close.
func (s *Stmt) Close() error {
	err := s.inner.Close()
	if err != nil {
		s.conn.setLastErr(err)
	}
	return err
}

// DebugListing returns an indented dump of the statement's parsed
// command tree, for diagnostics (see Conn.Config's PARSERTRACE knob).
func (s *Stmt) DebugListing() string { return s.inner.DebugListing() }
