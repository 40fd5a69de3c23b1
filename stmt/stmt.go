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

// Package stmt drives one prepared statement through New/Step/Rewind/
// Close, dispatching by command kind: SELECT steps one projected row
// at a time off an already-materialized result set, every other
// command kind runs once on its first Step and then reports Done.
// Grounded on db/executor.go's execute/operate dispatch switch (trimmed
// of the teacher's multi-tenant namespace/permission/transaction-buffer
// concerns, none of which apply to a single connection against a
// single backend) and db/db.go's statement lifecycle.
package stmt

import (
	"context"

	"github.com/xjd1/xjd1/eval"
	"github.com/xjd1/xjd1/exec"
	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/pool"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/storage"
	"github.com/xjd1/xjd1/value"
)

// StepResult is the outcome of one Step call.
type StepResult int

const (
	// Done reports that the statement produced no (further) row: either
	// it is a non-SELECT command that already ran its one-shot side
	// effect, or a SELECT that has yielded every row of its result.
	Done StepResult = iota
	// Row reports that Value() now holds a freshly rendered result row.
	Row
)

// ArenaLimit, when non-zero, caps the arena bytes a single Stmt may
// consume for its retained statement text (see pool.Arena.SetLimit).
// Zero (the default) leaves statements uncapped.
var ArenaLimit int

// Stmt is one prepared statement bound to a storage.Backend. It is not
// safe for concurrent use by two goroutines, matching spec.md §5's
// single-threaded stepping contract.
type Stmt struct {
	backend storage.Backend
	ex      *exec.Executor
	params  eval.Params
	cmd     parse.Command
	text    string
	arena   *pool.Arena

	rows    []*value.Value
	pos     int
	started bool
	ran     bool
	value   string
}

// New parses the first statement out of text, binding params to its
// `?` placeholders positionally, and reports how many leading bytes of
// text the statement consumed (including its terminating ';' if
// present) so a caller feeding a whole script can advance past it.
func New(backend storage.Backend, text string, params ...*value.Value) (*Stmt, int, error) {
	cmd, consumed, err := parse.ParseFirst([]byte(text))
	if err != nil {
		return nil, 0, err
	}
	a := pool.New()
	if ArenaLimit > 0 {
		a.SetLimit(ArenaLimit)
	}
	a.Keep(cmd)
	stored, err := a.StringChecked(text[:consumed])
	if err != nil {
		a.Reset()
		return nil, 0, err
	}
	s := &Stmt{
		backend: backend,
		params:  eval.Params(params),
		cmd:     cmd,
		text:    stored,
		arena:   a,
	}
	s.ex = exec.New(backend, s.params)
	return s, consumed, nil
}

// Text returns the statement's own source text, as consumed at New.
func (s *Stmt) Text() string { return s.text }

// Step runs the statement one increment. For a SELECT the whole result
// is computed on the first call (spec.md §4.6: GROUP BY/DISTINCT/ORDER
// BY all need every row before producing the first one) and handed
// back one row per call thereafter; every other command kind runs its
// entire effect on the first call and reports Done from then on.
func (s *Stmt) Step(ctx context.Context) (StepResult, error) {
	switch c := s.cmd.(type) {
	case *parse.SelectCmd:
		return s.stepSelect(ctx, c)
	case *parse.InsertCmd:
		return s.once(func() error { return s.execInsert(ctx, c) })
	case *parse.UpdateCmd:
		return s.once(func() error { return s.execUpdate(ctx, c) })
	case *parse.DeleteCmd:
		return s.once(func() error { return s.execDelete(ctx, c) })
	case *parse.CreateCollectionCmd:
		return s.once(func() error { return s.backend.CreateCollection(ctx, c.Collection, c.IfNotExists) })
	case *parse.DropCollectionCmd:
		return s.once(func() error { return s.backend.DropCollection(ctx, c.Collection, c.IfExists) })
	case *parse.TxnCmd:
		return s.once(func() error { return s.execTxn(ctx, c) })
	case *parse.PragmaCmd:
		return s.once(func() error { return s.execPragma(ctx, c) })
	}
	return Done, nil
}

func (s *Stmt) once(fn func() error) (StepResult, error) {
	if s.ran {
		return Done, nil
	}
	s.ran = true
	if err := fn(); err != nil {
		return Done, err
	}
	return Done, nil
}

func (s *Stmt) stepSelect(ctx context.Context, c *parse.SelectCmd) (StepResult, error) {
	if !s.started {
		rows, err := s.ex.Run(ctx, c.Query)
		if err != nil {
			return Done, err
		}
		s.rows = rows
		s.started = true
	}
	if s.pos >= len(s.rows) {
		return Done, nil
	}
	row := s.rows[s.pos]
	s.rows[s.pos] = nil
	s.pos++
	s.value = value.RenderString(row)
	value.Free(row)
	return Row, nil
}

func (s *Stmt) execTxn(ctx context.Context, c *parse.TxnCmd) error {
	switch c.Kind {
	case parse.TxnBegin:
		return s.backend.Begin(ctx)
	case parse.TxnCommit:
		return s.backend.Commit(ctx)
	case parse.TxnRollback:
		return s.backend.Rollback(ctx)
	}
	return nil
}

// Value returns the most recently produced result: a rendered JSON row
// after Step returned Row, or "" for every command kind that never
// produces one.
func (s *Stmt) Value() string { return s.value }

// Rewind resets the statement to its just-prepared state, re-running
// from scratch on the next Step while keeping the already-parsed
// command tree, per spec.md §4.7.
func (s *Stmt) Rewind() error {
	for i := s.pos; i < len(s.rows); i++ {
		value.Free(s.rows[i])
	}
	s.rows = nil
	s.pos = 0
	s.started = false
	s.ran = false
	s.value = ""
	return nil
}

// Close releases the statement's arena and any unstepped result rows.
// A Stmt must not be used again after Close.
func (s *Stmt) Close() error {
	for i := s.pos; i < len(s.rows); i++ {
		value.Free(s.rows[i])
	}
	s.rows = nil
	if s.arena != nil {
		s.arena.Reset()
		s.arena = nil
	}
	return nil
}

// Delete is an alias for Close, named to match spec.md §6's
// stmt_delete concept.
func (s *Stmt) Delete() error { return s.Close() }
