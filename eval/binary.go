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

package eval

import (
	"context"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
)

func evalBinary(ctx context.Context, x *parse.Binary, env source.Env, params Params, runner Runner) (*value.Value, error) {
	// && and || short-circuit, so the right operand is only evaluated
	// when it can affect the result.
	if x.Op == parse.BinAnd {
		l, err := Eval(ctx, x.Left, env, params, runner)
		if err != nil {
			return nil, err
		}
		lt := value.Truthy(l)
		value.Free(l)
		if !lt {
			return value.Bool(false), nil
		}
		r, err := Eval(ctx, x.Right, env, params, runner)
		if err != nil {
			return nil, err
		}
		defer value.Free(r)
		return value.Bool(value.Truthy(r)), nil
	}
	if x.Op == parse.BinOr {
		l, err := Eval(ctx, x.Left, env, params, runner)
		if err != nil {
			return nil, err
		}
		lt := value.Truthy(l)
		value.Free(l)
		if lt {
			return value.Bool(true), nil
		}
		r, err := Eval(ctx, x.Right, env, params, runner)
		if err != nil {
			return nil, err
		}
		defer value.Free(r)
		return value.Bool(value.Truthy(r)), nil
	}

	l, err := Eval(ctx, x.Left, env, params, runner)
	if err != nil {
		return nil, err
	}
	defer value.Free(l)
	r, err := Eval(ctx, x.Right, env, params, runner)
	if err != nil {
		return nil, err
	}
	defer value.Free(r)

	return ApplyBinary(x.Op, l, r), nil
}

// ApplyBinary combines two already-evaluated operands. It covers every
// BinaryOp except AND/OR, whose short-circuit evaluation in evalBinary
// above needs the unevaluated right operand; callers that already have
// both sides in hand (exec's grouped/aggregate evaluation, which must
// compute both regardless) can still use it for AND/OR since there are
// no side effects to skip.
func ApplyBinary(op parse.BinaryOp, l, r *value.Value) *value.Value {
	switch op {
	case parse.BinAnd:
		return value.Bool(value.Truthy(l) && value.Truthy(r))
	case parse.BinOr:
		return value.Bool(value.Truthy(l) || value.Truthy(r))
	case parse.BinEq:
		return value.Bool(value.Compare(l, r) == 0)
	case parse.BinNe:
		return value.Bool(value.Compare(l, r) != 0)
	case parse.BinLt:
		return value.Bool(value.Compare(l, r) < 0)
	case parse.BinLe:
		return value.Bool(value.Compare(l, r) <= 0)
	case parse.BinGt:
		return value.Bool(value.Compare(l, r) > 0)
	case parse.BinGe:
		return value.Bool(value.Compare(l, r) >= 0)
	case parse.BinLike:
		return value.Bool(likeMatch(value.ToString(l), value.ToString(r)))
	case parse.BinIn:
		return evalIn(l, r)
	case parse.BinBitOr:
		return value.Real(float64(value.ToInt32(l) | value.ToInt32(r)))
	case parse.BinBitAnd:
		return value.Real(float64(value.ToInt32(l) & value.ToInt32(r)))
	case parse.BinShl:
		return value.Real(float64(value.ToInt32(l) << uint(value.ToInt32(r)&31)))
	case parse.BinShr:
		return value.Real(float64(value.ToInt32(l) >> uint(value.ToInt32(r)&31)))
	case parse.BinAdd, parse.BinSub, parse.BinMul, parse.BinDiv, parse.BinMod:
		return evalArith(op, l, r)
	}
	return value.Null()
}

// ApplyUnary applies an already-evaluated unary operator.
func ApplyUnary(op parse.UnaryOp, v *value.Value) *value.Value {
	switch op {
	case parse.UnaryNeg:
		f, ok := value.ToReal(v)
		if !ok {
			return value.Null()
		}
		return value.Real(-f)
	case parse.UnaryNot:
		return value.Bool(!value.Truthy(v))
	case parse.UnaryBitNot:
		return value.Real(float64(^value.ToInt32(v)))
	}
	return value.Null()
}

func evalIn(l, r *value.Value) *value.Value {
	if !r.IsArray() {
		return value.Bool(false)
	}
	for i := 0; i < r.Len(); i++ {
		if value.Compare(l, r.Elem(i)) == 0 {
			return value.Bool(true)
		}
	}
	return value.Bool(false)
}

// evalArith implements the five arithmetic operators (+ - * / %) plus string
// concatenation for ADD. Per spec.md §9 (a deliberate deviation from
// original_source's `/0 -> 0`), division and modulo by zero yield
// NULL rather than propagating a C-style zero or infinity.
func evalArith(op parse.BinaryOp, l, r *value.Value) *value.Value {
	if op == parse.BinAdd && l.IsString() && r.IsString() {
		return value.Str(l.RawString() + r.RawString())
	}
	lf, lok := value.ToReal(l)
	rf, rok := value.ToReal(r)
	if !lok || !rok {
		return value.Null()
	}
	switch op {
	case parse.BinAdd:
		return value.Real(lf + rf)
	case parse.BinSub:
		return value.Real(lf - rf)
	case parse.BinMul:
		return value.Real(lf * rf)
	case parse.BinDiv:
		if rf == 0 {
			return value.Null()
		}
		return value.Real(lf / rf)
	case parse.BinMod:
		ri := value.ToInt32(r)
		if ri == 0 {
			return value.Null()
		}
		return value.Real(float64(value.ToInt32(l) % ri))
	}
	return value.Null()
}
