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

// execUpdate implements spec.md §4.8 in full, including the
// reviseOneField field-revision primitive the C source stubs out
// (original_source's update.c returns the document unchanged): for
// each scanned row whose WHERE is absent or truthy, every SET
// assignment's lvalue path is walked/created and its leaf set to the
// evaluated expression. If WHERE matched no row and an ELSE INSERT
// clause is present, the upsert runs inside an explicit backend
// transaction.
func (s *Stmt) execUpdate(ctx context.Context, c *parse.UpdateCmd) error {
	cur, err := s.backend.Scan(ctx, c.Collection)
	if err != nil {
		return err
	}

	type pendingUpdate struct {
		rowid int64
		json  string
	}
	var updates []pendingUpdate
	matched := 0

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
		env := source.Env{c.Collection: doc}
		if c.Where != nil {
			v, err := eval.Eval(ctx, c.Where, env, s.params, s.ex)
			if err != nil {
				value.Free(doc)
				cur.Close()
				return err
			}
			keep := value.Truthy(v)
			value.Free(v)
			if !keep {
				value.Free(doc)
				continue
			}
		}

		matched++
		for _, assign := range c.Sets {
			newVal, err := eval.Eval(ctx, assign.Value, env, s.params, s.ex)
			if err != nil {
				value.Free(doc)
				cur.Close()
				return err
			}
			doc, err = reviseOneField(ctx, doc, assign.Target, newVal, env, s.params, s.ex)
			if err != nil {
				value.Free(doc)
				cur.Close()
				return err
			}
			env[c.Collection] = doc
		}
		updates = append(updates, pendingUpdate{rowid: row.RowID, json: value.RenderString(doc)})
		value.Free(doc)
	}
	cur.Close()

	for _, u := range updates {
		if err := s.backend.UpdateRow(ctx, c.Collection, u.rowid, u.json); err != nil {
			return err
		}
	}

	if matched == 0 && c.ElseInsert != nil {
		if err := s.backend.Begin(ctx); err != nil {
			return err
		}
		v, err := eval.Eval(ctx, c.ElseInsert, source.Env{}, s.params, s.ex)
		if err != nil {
			s.backend.Rollback(ctx)
			return err
		}
		text := value.RenderString(v)
		value.Free(v)
		if _, err := s.backend.Insert(ctx, c.Collection, text); err != nil {
			s.backend.Rollback(ctx)
			return err
		}
		if err := s.backend.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// lstep is one segment of an UPDATE lvalue's field path: a named
// struct field, or a computed (struct-or-array) subscript.
type lstep struct {
	field     string
	isField   bool
	indexExpr parse.Expr
}

// lvaluePath decomposes an assignment target into its root field name
// plus the chain of `.label`/`[expr]` steps beneath it. Only Ident,
// Field, and Index nodes are valid lvalue shapes; the grammar's
// parseLValue accepts any primary with postfix suffixes (a call, a
// literal, a parenthesized expression), so other shapes are rejected
// here.
func lvaluePath(e parse.Expr) (root string, steps []lstep, err error) {
	switch x := e.(type) {
	case *parse.Ident:
		if len(x.Path) != 1 {
			return "", nil, &xerr.SemanticError{Reason: "invalid assignment target"}
		}
		return x.Path[0], nil, nil
	case *parse.Field:
		r, st, err := lvaluePath(x.X)
		if err != nil {
			return "", nil, err
		}
		return r, append(st, lstep{field: x.Label, isField: true}), nil
	case *parse.Index:
		r, st, err := lvaluePath(x.X)
		if err != nil {
			return "", nil, err
		}
		return r, append(st, lstep{indexExpr: x.Index}), nil
	}
	return "", nil, &xerr.SemanticError{Reason: "invalid assignment target"}
}

// reviseOneField applies one SET assignment to doc, per spec.md §4.8's
// lvalue semantics: a bare identifier replaces that top-level field;
// a `.label`/`[expr]` chain walks (creating missing intermediate
// struct containers) down to the named leaf. It consumes newVal.
func reviseOneField(ctx context.Context, doc *value.Value, target parse.Expr, newVal *value.Value, env source.Env, params eval.Params, runner eval.Runner) (*value.Value, error) {
	root, rest, err := lvaluePath(target)
	if err != nil {
		value.Free(newVal)
		return doc, err
	}
	steps := append([]lstep{{field: root, isField: true}}, rest...)
	return setPath(ctx, doc, steps, newVal, env, params, runner)
}

// setPath walks container down steps, editing in place (copy-on-write
// via value.Edit) and creating missing intermediate struct containers,
// then sets the final step's target to newVal. It always returns an
// edited container, even on error, so the caller can still render/free
// it; newVal is consumed on every path, including error returns.
func setPath(ctx context.Context, container *value.Value, steps []lstep, newVal *value.Value, env source.Env, params eval.Params, runner eval.Runner) (*value.Value, error) {
	edited := value.Edit(container)
	step := steps[0]

	if !step.isField {
		idx, err := eval.Eval(ctx, step.indexExpr, env, params, runner)
		if err != nil {
			value.Free(newVal)
			return edited, err
		}
		defer value.Free(idx)

		if edited.IsArray() {
			i := int(value.ToInt32(idx))
			if i < 0 || i >= edited.Len() {
				value.Free(newVal)
				return edited, &xerr.SemanticError{Reason: "update index out of range"}
			}
			if len(steps) == 1 {
				value.SetElem(edited, i, newVal)
				return edited, nil
			}
			child := value.Ref(edited.Elem(i))
			newChild, err := setPath(ctx, child, steps[1:], newVal, env, params, runner)
			if err != nil {
				return edited, err
			}
			value.SetElem(edited, i, newChild)
			return edited, nil
		}
		if !edited.IsStruct() {
			value.Free(newVal)
			return edited, &xerr.SemanticError{Reason: "cannot index into a non-object, non-array value"}
		}
		return setField(ctx, edited, value.ToString(idx), steps, newVal, env, params, runner)
	}

	if !edited.IsStruct() {
		value.Free(newVal)
		return edited, &xerr.SemanticError{Reason: "cannot set a field on a non-object value"}
	}
	return setField(ctx, edited, step.field, steps, newVal, env, params, runner)
}

func setField(ctx context.Context, edited *value.Value, label string, steps []lstep, newVal *value.Value, env source.Env, params eval.Params, runner eval.Runner) (*value.Value, error) {
	if len(steps) == 1 {
		value.SetField(edited, label, newVal)
		return edited, nil
	}
	var child *value.Value
	if f := edited.Field(label); f != nil && (f.IsStruct() || f.IsArray()) {
		child = value.Ref(f)
	} else {
		child = value.Struct()
	}
	newChild, err := setPath(ctx, child, steps[1:], newVal, env, params, runner)
	if err != nil {
		return edited, err
	}
	value.SetField(edited, label, newChild)
	return edited, nil
}
