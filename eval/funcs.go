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
	"math"
	"strings"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
	"github.com/xjd1/xjd1/xerr"
)

// scalarFuncs is the table of non-aggregate functions, grounded on
// util/fncs's per-concern file layout (math.go, string.go, is.go)
// collapsed into the handful spec.md §4.5 names for a scalar value
// evaluator.
var scalarFuncs = map[string]func([]*value.Value) (*value.Value, error){
	"len":   fnLen,
	"upper": fnUpper,
	"lower": fnLower,
	"trim":  fnTrim,
	"abs":   fnAbs,
	"round": fnRound,
	"floor": fnFloor,
	"ceil":  fnCeil,
	"type":  fnType,
}

func evalCall(ctx context.Context, x *parse.Call, env source.Env, params Params, runner Runner) (*value.Value, error) {
	if IsAggregate(x.Name) {
		return nil, &xerr.SemanticError{Reason: "aggregate function " + x.Name + "() used outside of a grouped context"}
	}
	fn, ok := scalarFuncs[x.Name]
	if !ok {
		return nil, &xerr.SemanticError{Reason: "no such function: " + x.Name}
	}
	args := make([]*value.Value, len(x.Args))
	for i, a := range x.Args {
		v, err := Eval(ctx, a, env, params, runner)
		if err != nil {
			for j := 0; j < i; j++ {
				value.Free(args[j])
			}
			return nil, err
		}
		args[i] = v
	}
	defer func() {
		for _, a := range args {
			value.Free(a)
		}
	}()
	return fn(args)
}

func arg1(name string, args []*value.Value) (*value.Value, error) {
	if len(args) != 1 {
		return nil, &xerr.SemanticError{Reason: name + "() takes exactly one argument"}
	}
	return args[0], nil
}

func fnLen(args []*value.Value) (*value.Value, error) {
	v, err := arg1("len", args)
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case value.KindString:
		return value.Real(float64(len([]rune(v.RawString())))), nil
	case value.KindArray, value.KindStruct:
		return value.Real(float64(v.Len())), nil
	}
	return value.Null(), nil
}

func fnUpper(args []*value.Value) (*value.Value, error) {
	v, err := arg1("upper", args)
	if err != nil {
		return nil, err
	}
	return value.Str(strings.ToUpper(value.ToString(v))), nil
}

func fnLower(args []*value.Value) (*value.Value, error) {
	v, err := arg1("lower", args)
	if err != nil {
		return nil, err
	}
	return value.Str(strings.ToLower(value.ToString(v))), nil
}

func fnTrim(args []*value.Value) (*value.Value, error) {
	v, err := arg1("trim", args)
	if err != nil {
		return nil, err
	}
	return value.Str(strings.TrimSpace(value.ToString(v))), nil
}

func fnAbs(args []*value.Value) (*value.Value, error) {
	v, err := arg1("abs", args)
	if err != nil {
		return nil, err
	}
	f, ok := value.ToReal(v)
	if !ok {
		return value.Null(), nil
	}
	return value.Real(math.Abs(f)), nil
}

func fnRound(args []*value.Value) (*value.Value, error) {
	v, err := arg1("round", args)
	if err != nil {
		return nil, err
	}
	f, ok := value.ToReal(v)
	if !ok {
		return value.Null(), nil
	}
	return value.Real(math.Round(f)), nil
}

func fnFloor(args []*value.Value) (*value.Value, error) {
	v, err := arg1("floor", args)
	if err != nil {
		return nil, err
	}
	f, ok := value.ToReal(v)
	if !ok {
		return value.Null(), nil
	}
	return value.Real(math.Floor(f)), nil
}

func fnCeil(args []*value.Value) (*value.Value, error) {
	v, err := arg1("ceil", args)
	if err != nil {
		return nil, err
	}
	f, ok := value.ToReal(v)
	if !ok {
		return value.Null(), nil
	}
	return value.Real(math.Ceil(f)), nil
}

func fnType(args []*value.Value) (*value.Value, error) {
	v, err := arg1("type", args)
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case value.KindFalse, value.KindTrue:
		return value.Str("boolean"), nil
	case value.KindReal:
		return value.Str("number"), nil
	case value.KindNull:
		return value.Str("null"), nil
	case value.KindString:
		return value.Str("string"), nil
	case value.KindArray:
		return value.Str("array"), nil
	case value.KindStruct:
		return value.Str("object"), nil
	}
	return value.Str("null"), nil
}
