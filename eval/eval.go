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

// Package eval evaluates parse.Expr against a source.Env, producing
// *value.Value results. Grounded on util/fncs's per-concern function
// layout and util/comp.Comp's evaluation dispatch, adapted from
// surrealdb's interface{}-typed document model to xjd1's tagged
// value.Value.
package eval

import (
	"context"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
	"github.com/xjd1/xjd1/xerr"
)

// Runner opens an iterator over a subquery, implemented by exec so
// Subquery/Exists expressions can recurse into the executor without
// an eval -> exec import cycle.
type Runner interface {
	OpenQuery(ctx context.Context, q *parse.Query) (source.Iterator, error)
}

// Params supplies the positional `?` placeholder values bound to a
// prepared statement.
type Params []*value.Value

func (p Params) at(i int) (*value.Value, error) {
	if i < 1 || i > len(p) {
		return nil, &xerr.SemanticError{Reason: "parameter index out of range"}
	}
	return p[i-1], nil
}

// Eval evaluates e against env, resolving `?` placeholders from
// params and subqueries via runner.
func Eval(ctx context.Context, e parse.Expr, env source.Env, params Params, runner Runner) (*value.Value, error) {
	switch x := e.(type) {
	case *parse.Literal:
		return value.Ref(x.Value), nil

	case *parse.StructLit:
		return evalStructLit(ctx, x, env, params, runner)

	case *parse.ArrayLit:
		return evalArrayLit(ctx, x, env, params, runner)

	case *parse.Ident:
		return evalIdent(env, x.Path)

	case *parse.Doc:
		return evalDoc(env, x.Name)

	case *parse.Param:
		return params.at(x.Index)

	case *parse.Unary:
		return evalUnary(ctx, x, env, params, runner)

	case *parse.Binary:
		return evalBinary(ctx, x, env, params, runner)

	case *parse.Between:
		return evalBetween(ctx, x, env, params, runner)

	case *parse.Field:
		base, err := Eval(ctx, x.X, env, params, runner)
		if err != nil {
			return nil, err
		}
		defer value.Free(base)
		if !base.IsStruct() {
			return value.Null(), nil
		}
		f := base.Field(x.Label)
		if f == nil {
			return value.Null(), nil
		}
		return value.Ref(f), nil

	case *parse.Index:
		base, err := Eval(ctx, x.X, env, params, runner)
		if err != nil {
			return nil, err
		}
		defer value.Free(base)
		idx, err := Eval(ctx, x.Index, env, params, runner)
		if err != nil {
			return nil, err
		}
		defer value.Free(idx)
		return evalIndex(base, idx)

	case *parse.Cond:
		c, err := Eval(ctx, x.Cond, env, params, runner)
		if err != nil {
			return nil, err
		}
		truthy := value.Truthy(c)
		value.Free(c)
		if truthy {
			return Eval(ctx, x.Then, env, params, runner)
		}
		return Eval(ctx, x.Else, env, params, runner)

	case *parse.Call:
		return evalCall(ctx, x, env, params, runner)

	case *parse.Exists:
		return evalExists(ctx, x, runner)

	case *parse.Subquery:
		return evalSubquery(ctx, x, runner)
	}
	return nil, &xerr.SemanticError{Reason: "unsupported expression"}
}

func evalIdent(env source.Env, path []string) (*value.Value, error) {
	if len(path) == 0 {
		return value.Null(), nil
	}
	name := path[0]
	if doc, ok := env[name]; ok {
		return value.Ref(doc), nil
	}
	// A bare identifier with no matching alias is looked up as a field
	// on every bound document in scope, the common case of an
	// unqualified column reference over a single-term FROM clause.
	for _, doc := range env {
		if doc.IsStruct() {
			if f := doc.Field(name); f != nil {
				return value.Ref(f), nil
			}
		}
	}
	return value.Null(), nil
}

func evalDoc(env source.Env, name string) (*value.Value, error) {
	if name != "" {
		if doc, ok := env[name]; ok {
			return value.Ref(doc), nil
		}
		return value.Null(), nil
	}
	if len(env) == 1 {
		for _, doc := range env {
			return value.Ref(doc), nil
		}
	}
	out := value.Struct()
	for alias, doc := range env {
		value.Insert(out, alias, value.Ref(doc))
	}
	return out, nil
}

// evalStructLit builds a struct by evaluating each field's value
// expression in order and inserting it under its parse-time label,
// grounded on the original's TK_STRUCT ExprList construction.
func evalStructLit(ctx context.Context, x *parse.StructLit, env source.Env, params Params, runner Runner) (*value.Value, error) {
	out := value.Struct()
	for _, f := range x.Fields {
		v, err := Eval(ctx, f.Value, env, params, runner)
		if err != nil {
			value.Free(out)
			return nil, err
		}
		value.Insert(out, f.Label, v)
	}
	return out, nil
}

// evalArrayLit builds an array by evaluating each element expression
// in order, grounded on the original's TK_ARRAY ExprList construction.
func evalArrayLit(ctx context.Context, x *parse.ArrayLit, env source.Env, params Params, runner Runner) (*value.Value, error) {
	out := value.Array()
	for _, e := range x.Elems {
		v, err := Eval(ctx, e, env, params, runner)
		if err != nil {
			value.Free(out)
			return nil, err
		}
		value.Append(out, v)
	}
	return out, nil
}

func evalIndex(base, idx *value.Value) (*value.Value, error) {
	switch base.Kind() {
	case value.KindArray:
		i := value.ToInt32(idx)
		if i < 0 || int(i) >= base.Len() {
			return value.Null(), nil
		}
		return value.Ref(base.Elem(int(i))), nil
	case value.KindStruct:
		if idx.Kind() != value.KindString {
			return value.Null(), nil
		}
		f := base.Field(idx.RawString())
		if f == nil {
			return value.Null(), nil
		}
		return value.Ref(f), nil
	}
	return value.Null(), nil
}

func evalUnary(ctx context.Context, x *parse.Unary, env source.Env, params Params, runner Runner) (*value.Value, error) {
	v, err := Eval(ctx, x.X, env, params, runner)
	if err != nil {
		return nil, err
	}
	defer value.Free(v)
	switch x.Op {
	case parse.UnaryNeg:
		f, ok := value.ToReal(v)
		if !ok {
			return value.Null(), nil
		}
		return value.Real(-f), nil
	case parse.UnaryNot:
		return value.Bool(!value.Truthy(v)), nil
	case parse.UnaryBitNot:
		return value.Real(float64(^value.ToInt32(v))), nil
	}
	return value.Null(), nil
}

func evalBetween(ctx context.Context, x *parse.Between, env source.Env, params Params, runner Runner) (*value.Value, error) {
	v, err := Eval(ctx, x.X, env, params, runner)
	if err != nil {
		return nil, err
	}
	defer value.Free(v)
	lo, err := Eval(ctx, x.Lo, env, params, runner)
	if err != nil {
		return nil, err
	}
	defer value.Free(lo)
	hi, err := Eval(ctx, x.Hi, env, params, runner)
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

func evalExists(ctx context.Context, x *parse.Exists, runner Runner) (*value.Value, error) {
	it, err := runner.OpenQuery(ctx, x.Query)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	_, ok, err := it.Next(ctx)
	if err != nil {
		return nil, err
	}
	return value.Bool(ok), nil
}

// evalSubquery implements the scalar-subquery contract from
// spec.md §9: zero rows yields NULL, exactly one row yields that row's
// sole result value, and more than one row is a semantic error.
func evalSubquery(ctx context.Context, x *parse.Subquery, runner Runner) (*value.Value, error) {
	it, err := runner.OpenQuery(ctx, x.Query)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	env, ok, err := it.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Null(), nil
	}
	result := firstOf(env)
	_, ok2, err := it.Next(ctx)
	if err != nil {
		return nil, err
	}
	if ok2 {
		value.Free(result)
		return nil, &xerr.SemanticError{Reason: "scalar subquery returned more than one row"}
	}
	return result, nil
}

// firstOf extracts the scalar value a subquery-as-expression yields:
// its sole bound document, unwrapped one level if that document is a
// single-field object (the normal shape of a one-column SELECT
// result), so `(SELECT v FROM y)` yields v's value rather than
// `{"v": ...}`.
func firstOf(env source.Env) *value.Value {
	for _, v := range env {
		if v.IsStruct() && v.Len() == 1 {
			return value.Ref(v.Field(v.Labels()[0]))
		}
		return value.Ref(v)
	}
	return value.Null()
}

func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

// likeMatchRunes implements SQL LIKE semantics: '%' matches any run of
// characters (including none), '_' matches exactly one character.
func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for i := range s {
			if likeMatchRunes(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	}
}
