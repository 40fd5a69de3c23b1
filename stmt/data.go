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

package stmt

import (
	"context"

	"github.com/xjd1/xjd1/eval"
	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
	"github.com/xjd1/xjd1/xerr"
)

// execInsert implements both INSERT forms from spec.md §4.7: VALUE
// evaluates one expression and inserts its rendering; SELECT runs the
// inner query and inserts one row per result.
func (s *Stmt) execInsert(ctx context.Context, c *parse.InsertCmd) error {
	if c.Value != nil {
		v, err := eval.Eval(ctx, c.Value, source.Env{}, s.params, s.ex)
		if err != nil {
			return err
		}
		text := value.RenderString(v)
		value.Free(v)
		_, err = s.backend.Insert(ctx, c.Collection, text)
		return err
	}
	rows, err := s.ex.Run(ctx, c.Query)
	if err != nil {
		return err
	}
	for _, row := range rows {
		text := value.RenderString(row)
		value.Free(row)
		if _, err := s.backend.Insert(ctx, c.Collection, text); err != nil {
			return err
		}
	}
	return nil
}

// execDelete scans the target collection, evaluating WHERE against
// each document, and removes every matching row. Matching rowids are
// collected before any DeleteRow call so the backend cursor is never
// mutated out from under itself mid-scan.
func (s *Stmt) execDelete(ctx context.Context, c *parse.DeleteCmd) error {
	cur, err := s.backend.Scan(ctx, c.Collection)
	if err != nil {
		return err
	}
	var toDelete []int64
	for {
		row, ok, err := cur.Next(ctx)
		if err != nil {
			cur.Close()
			return err
		}
		if !ok {
			break
		}
		doc, err := value.Parse([]byte(row.JSON))
		if err != nil {
			cur.Close()
			return err
		}
		keep := true
		if c.Where != nil {
			env := source.Env{c.Collection: doc}
			v, err := eval.Eval(ctx, c.Where, env, s.params, s.ex)
			if err != nil {
				value.Free(doc)
				cur.Close()
				return err
			}
			keep = value.Truthy(v)
			value.Free(v)
		}
		value.Free(doc)
		if keep {
			toDelete = append(toDelete, row.RowID)
		}
	}
	cur.Close()
	for _, id := range toDelete {
		if err := s.backend.DeleteRow(ctx, c.Collection, id); err != nil {
			return err
		}
	}
	return nil
}

// execPragma handles recognized debug knobs. PARSERTRACE is a
// connection-level setting (xjd1.Conn.Config) rather than a per-
// statement one, so a bare `PRAGMA PARSERTRACE = true` parses and
// validates but otherwise no-ops at the stmt layer.
func (s *Stmt) execPragma(ctx context.Context, c *parse.PragmaCmd) error {
	switch c.Name {
	case "PARSERTRACE":
		return nil
	default:
		return &xerr.SemanticError{Reason: "unknown pragma " + c.Name}
	}
}
