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

package exec

import (
	"context"
	"sort"

	"github.com/xjd1/xjd1/eval"
	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
	"github.com/xjd1/xjd1/xerr"
)

// rowCtx is either one ungrouped row (single) or one group of rows
// (group, with grouped set), the two shapes a SELECT list, HAVING, or
// ORDER BY expression may need to evaluate against.
type rowCtx struct {
	grouped bool
	group   []source.Env
	single  source.Env
}

func (rc rowCtx) representative() source.Env {
	if !rc.grouped {
		return rc.single
	}
	if len(rc.group) == 0 {
		return source.Env{}
	}
	return rc.group[0]
}

// evalGrouped evaluates e against rc, computing any aggregate call it
// contains over rc.group and falling back to eval.Eval against the
// group's representative row for everything else. It mirrors eval.Eval's
// composite-node cases just deeply enough to let an aggregate appear
// nested inside arithmetic or a HAVING condition (e.g.
// `HAVING count(*) > 1`), which is the shape spec.md's GROUP BY
// examples actually need.
func (ex *Executor) evalGrouped(ctx context.Context, e parse.Expr, rc rowCtx) (*value.Value, error) {
	if call, ok := e.(*parse.Call); ok && eval.IsAggregate(call.Name) {
		if !rc.grouped {
			return nil, &xerr.SemanticError{Reason: "aggregate function " + call.Name + "() used outside of a grouped context"}
		}
		return eval.Aggregate(ctx, call, rc.group, ex.Params, ex)
	}

	switch x := e.(type) {
	case *parse.Binary:
		l, err := ex.evalGrouped(ctx, x.Left, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(l)
		r, err := ex.evalGrouped(ctx, x.Right, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(r)
		return eval.ApplyBinary(x.Op, l, r), nil

	case *parse.Unary:
		v, err := ex.evalGrouped(ctx, x.X, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(v)
		return eval.ApplyUnary(x.Op, v), nil

	case *parse.Cond:
		c, err := ex.evalGrouped(ctx, x.Cond, rc)
		if err != nil {
			return nil, err
		}
		truthy := value.Truthy(c)
		value.Free(c)
		if truthy {
			return ex.evalGrouped(ctx, x.Then, rc)
		}
		return ex.evalGrouped(ctx, x.Else, rc)

	case *parse.Between:
		v, err := ex.evalGrouped(ctx, x.X, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(v)
		lo, err := ex.evalGrouped(ctx, x.Lo, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(lo)
		hi, err := ex.evalGrouped(ctx, x.Hi, rc)
		if err != nil {
			return nil, err
		}
		defer value.Free(hi)
		in := value.Compare(v, lo) >= 0 && value.Compare(v, hi) <= 0
		if x.Not {
			in = !in
		}
		return value.Bool(in), nil
	}

	return eval.Eval(ctx, e, rc.representative(), ex.Params, ex)
}

// groupKey computes the GROUP BY key tuple for one row.
func (ex *Executor) groupKey(ctx context.Context, q *parse.Query, env source.Env) ([]*value.Value, error) {
	key := make([]*value.Value, len(q.GroupBy))
	for i, e := range q.GroupBy {
		v, err := eval.Eval(ctx, e, env, ex.Params, ex)
		if err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}

func keysEqual(a, b []*value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if value.Compare(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}

// runGrouped buckets envs by q.GroupBy (a single implicit group when
// GroupBy is empty but an aggregate is present), sorts the groups by
// key ascending, applies HAVING, and projects each surviving group once.
func (ex *Executor) runGrouped(ctx context.Context, q *parse.Query, envs []source.Env) ([]*value.Value, []rowCtx, error) {
	type bucket struct {
		key  []*value.Value
		rows []source.Env
	}
	var buckets []*bucket

	if len(q.GroupBy) == 0 {
		buckets = append(buckets, &bucket{rows: envs})
	} else {
		for _, env := range envs {
			key, err := ex.groupKey(ctx, q, env)
			if err != nil {
				return nil, nil, err
			}
			var found *bucket
			for _, b := range buckets {
				if keysEqual(b.key, key) {
					found = b
					break
				}
			}
			if found == nil {
				buckets = append(buckets, &bucket{key: key, rows: []source.Env{env}})
			} else {
				found.rows = append(found.rows, env)
				for _, k := range key {
					value.Free(k)
				}
			}
		}
		sort.SliceStable(buckets, func(i, j int) bool {
			for k := range buckets[i].key {
				if c := value.Compare(buckets[i].key[k], buckets[j].key[k]); c != 0 {
					return c < 0
				}
			}
			return false
		})
	}

	var rows []*value.Value
	var ctxs []rowCtx
	for _, b := range buckets {
		rc := rowCtx{grouped: true, group: b.rows}
		if q.Having != nil {
			v, err := ex.evalGrouped(ctx, q.Having, rc)
			if err != nil {
				return nil, nil, err
			}
			keep := value.Truthy(v)
			value.Free(v)
			if !keep {
				continue
			}
		}
		row, err := ex.project(ctx, q.Columns, rc)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
		ctxs = append(ctxs, rc)
	}
	return rows, ctxs, nil
}

// project builds one result Struct from cols. A `*` column flattens
// every field of every bound document into the result; any other
// column contributes one field, labeled by its AS alias or, absent
// one, a name derived from the expression shape.
func (ex *Executor) project(ctx context.Context, cols []parse.ResultColumn, rc rowCtx) (*value.Value, error) {
	out := value.Struct()
	for i, col := range cols {
		if col.Star {
			env := rc.representative()
			aliases := make([]string, 0, len(env))
			for alias := range env {
				aliases = append(aliases, alias)
			}
			sort.Strings(aliases)
			for _, alias := range aliases {
				doc := env[alias]
				if doc.IsStruct() {
					for _, label := range doc.Labels() {
						value.Insert(out, label, value.Ref(doc.Field(label)))
					}
				} else if alias != "" {
					value.Insert(out, alias, value.Ref(doc))
				}
			}
			continue
		}
		v, err := ex.evalGrouped(ctx, col.Expr, rc)
		if err != nil {
			value.Free(out)
			return nil, err
		}
		label := col.Alias
		if label == "" {
			label = defaultLabel(col.Expr, i)
		}
		value.Insert(out, label, v)
	}
	return out, nil
}

func defaultLabel(e parse.Expr, index int) string {
	switch x := e.(type) {
	case *parse.Ident:
		if len(x.Path) > 0 {
			return x.Path[len(x.Path)-1]
		}
	case *parse.Field:
		return x.Label
	case *parse.Call:
		return x.Name
	case *parse.Doc:
		if x.Name != "" {
			return x.Name
		}
		return "doc"
	}
	return columnName(index)
}

func columnName(index int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if index < len(letters) {
		return "column" + string(letters[index])
	}
	return "column"
}
