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

// Package source walks a FROM clause, producing one Env (an alias ->
// document binding set) per row: a leaf collection scan, a
// comma-join's nested-loop cross product, a subquery, or a
// FLATTEN/EACH unroll of an array-valued document. Grounded on
// db/iterator.go's row-production shape and db/document.go's
// alias-bound document model, stripped of the teacher's goroutine
// worker pool to match xjd1's single-threaded stepping contract.
package source

import (
	"context"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/storage"
	"github.com/xjd1/xjd1/value"
)

// Env binds each FROM-clause alias in scope to its current document.
type Env map[string]*value.Value

// Clone returns a shallow copy of e, so downstream joins can extend
// the binding set without mutating an outer iterator's row.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Iterator yields one Env per row until exhausted.
type Iterator interface {
	Next(ctx context.Context) (Env, bool, error)
	Close() error
}

// QueryRunner opens an Iterator over a parsed subquery and evaluates a
// scalar expression against an Env. exec.Executor implements this so
// source can evaluate SubquerySrc/FlattenSrc without importing exec
// (which itself imports source to walk a FROM clause), avoiding an
// import cycle between the two packages.
type QueryRunner interface {
	OpenQuery(ctx context.Context, q *parse.Query) (Iterator, error)
	EvalExpr(ctx context.Context, e parse.Expr, env Env) (*value.Value, error)
}

// Open builds an Iterator over a FROM clause.
func Open(ctx context.Context, src parse.DataSrc, backend storage.Backend, runner QueryRunner) (Iterator, error) {
	switch s := src.(type) {
	case *parse.CollectionSrc:
		return openCollection(ctx, s, backend)
	case *parse.JoinSrc:
		return openJoin(ctx, s, backend, runner)
	case *parse.SubquerySrc:
		return openSubquery(ctx, s, runner)
	case *parse.FlattenSrc:
		inner, err := Open(ctx, s.Src, backend, runner)
		if err != nil {
			return nil, err
		}
		return &flattenIter{src: s, inner: inner, runner: runner}, nil
	}
	return nil, &UnsupportedSourceError{}
}

// UnsupportedSourceError is returned for a parse.DataSrc variant
// Open does not recognize; this should never occur for a DataSrc that
// came from the parse package's own constructors.
type UnsupportedSourceError struct{}

func (*UnsupportedSourceError) Error() string { return "unsupported data source" }

// collectionIter scans one collection, parsing each stored row's JSON
// text lazily.
type collectionIter struct {
	alias  string
	cursor storage.Cursor
}

func openCollection(ctx context.Context, s *parse.CollectionSrc, backend storage.Backend) (Iterator, error) {
	cur, err := backend.Scan(ctx, s.Collection)
	if err != nil {
		return nil, err
	}
	return &collectionIter{alias: s.Alias, cursor: cur}, nil
}

func (c *collectionIter) Next(ctx context.Context) (Env, bool, error) {
	row, ok, err := c.cursor.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	doc, err := value.Parse([]byte(row.JSON))
	if err != nil {
		return nil, false, err
	}
	doc = value.Arena(doc)
	return Env{c.alias: doc}, true, nil
}

func (c *collectionIter) Close() error { return c.cursor.Close() }

// joinIter implements the comma-join's nested-loop cross product:
// for every left row, the entire right source is rescanned.
type joinIter struct {
	left    Iterator
	right   parse.DataSrc
	backend storage.Backend
	runner  QueryRunner

	leftEnv  Env
	haveLeft bool
	curRight Iterator
}

func openJoin(ctx context.Context, s *parse.JoinSrc, backend storage.Backend, runner QueryRunner) (Iterator, error) {
	left, err := Open(ctx, s.Left, backend, runner)
	if err != nil {
		return nil, err
	}
	return &joinIter{left: left, right: s.Right, backend: backend, runner: runner}, nil
}

func (j *joinIter) Next(ctx context.Context) (Env, bool, error) {
	for {
		if !j.haveLeft {
			env, ok, err := j.left.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			j.leftEnv = env
			j.haveLeft = true
			right, err := Open(ctx, j.right, j.backend, j.runner)
			if err != nil {
				return nil, false, err
			}
			j.curRight = right
		}
		rEnv, ok, err := j.curRight.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			j.curRight.Close()
			j.haveLeft = false
			continue
		}
		out := j.leftEnv.Clone()
		for k, v := range rEnv {
			out[k] = v
		}
		return out, true, nil
	}
}

func (j *joinIter) Close() error {
	if j.curRight != nil {
		j.curRight.Close()
	}
	return j.left.Close()
}

// subqueryIter adapts a parse.Query's result rows to a single-alias
// Env stream.
type subqueryIter struct {
	alias string
	inner Iterator
}

func openSubquery(ctx context.Context, s *parse.SubquerySrc, runner QueryRunner) (Iterator, error) {
	inner, err := runner.OpenQuery(ctx, s.Query)
	if err != nil {
		return nil, err
	}
	return &subqueryIter{alias: s.Alias, inner: inner}, nil
}

func (s *subqueryIter) Next(ctx context.Context) (Env, bool, error) {
	env, ok, err := s.inner.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	out := Env{}
	for _, v := range env {
		out[s.alias] = v
	}
	return out, true, nil
}

func (s *subqueryIter) Close() error { return s.inner.Close() }

// flattenIter implements the postfix FLATTEN/EACH data-source operator:
// for each inner row, every expression in src.Exprs is evaluated and
// each non-empty array or struct result contributes one output row per
// element, bound under src.Alias to a {"k": key, "v": value} struct
// (array index as a number, struct label as a string). An empty
// result contributes no rows. FLATTEN and EACH are semantically
// identical; only the keyword differs.
type flattenIter struct {
	src    *parse.FlattenSrc
	inner  Iterator
	runner QueryRunner

	base    Env
	pending []flattenElem
	idx     int
}

// flattenElem is one (key, value) pair produced by unrolling an array
// or struct result of a FLATTEN/EACH expression.
type flattenElem struct {
	key *value.Value
	val *value.Value
}

func (f *flattenIter) Next(ctx context.Context) (Env, bool, error) {
	for {
		if f.idx < len(f.pending) {
			elem := f.pending[f.idx]
			f.idx++
			out := f.base.Clone()
			wrap := value.Struct()
			value.Insert(wrap, "k", elem.key)
			value.Insert(wrap, "v", elem.val)
			out[f.src.Alias] = wrap
			return out, true, nil
		}
		env, ok, err := f.inner.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		var elems []flattenElem
		for _, e := range f.src.Exprs {
			v, err := f.runner.EvalExpr(ctx, e, env)
			if err != nil {
				return nil, false, err
			}
			elems = append(elems, flattenElemsOf(v)...)
			value.Free(v)
		}
		f.base = env
		f.pending = elems
		f.idx = 0
	}
}

func (f *flattenIter) Close() error { return f.inner.Close() }

// flattenElemsOf unrolls v, keyed by numeric index for an array and by
// field label for a struct. Any other kind (including an empty array
// or struct) contributes no elements.
func flattenElemsOf(v *value.Value) []flattenElem {
	switch v.Kind() {
	case value.KindArray:
		out := make([]flattenElem, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = flattenElem{key: value.Real(float64(i)), val: value.Ref(v.Elem(i))}
		}
		return out
	case value.KindStruct:
		labels := v.Labels()
		out := make([]flattenElem, len(labels))
		for i, label := range labels {
			out[i] = flattenElem{key: value.Str(label), val: value.Ref(v.Field(label))}
		}
		return out
	}
	return nil
}
