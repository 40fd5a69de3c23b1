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

	"github.com/pkg/errors"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/source"
	"github.com/xjd1/xjd1/value"
)

var aggregateNames = map[string]bool{
	"count":     true,
	"sum":       true,
	"avg":       true,
	"min":       true,
	"max":       true,
	"array_agg": true,
}

// IsAggregate reports whether name is one of the six aggregate
// functions exec evaluates once per group rather than once per row.
func IsAggregate(name string) bool {
	return aggregateNames[name]
}

// Aggregate computes call over every row of group, evaluating its
// single argument expression (or, for count(*) and count(), nothing)
// against each row's Env in turn.
func Aggregate(ctx context.Context, call *parse.Call, group []source.Env, params Params, runner Runner) (*value.Value, error) {
	if !IsAggregate(call.Name) {
		return nil, errors.Errorf("%s() is not an aggregate function", call.Name)
	}
	if call.Name == "count" && (call.Star || len(call.Args) == 0) {
		return value.Real(float64(len(group))), nil
	}
	if len(call.Args) != 1 {
		return nil, errors.Errorf("%s() takes exactly one argument", call.Name)
	}

	vals := make([]*value.Value, 0, len(group))
	defer func() {
		for _, v := range vals {
			value.Free(v)
		}
	}()
	for _, env := range group {
		v, err := Eval(ctx, call.Args[0], env, params, runner)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}

	switch call.Name {
	case "count":
		n := 0
		for _, v := range vals {
			if !v.IsNull() {
				n++
			}
		}
		return value.Real(float64(n)), nil
	case "sum":
		var sum float64
		for _, v := range vals {
			if f, ok := value.ToReal(v); ok {
				sum += f
			}
		}
		return value.Real(sum), nil
	case "avg":
		var sum float64
		var n int
		for _, v := range vals {
			if f, ok := value.ToReal(v); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return value.Null(), nil
		}
		return value.Real(sum / float64(n)), nil
	case "min":
		return extremum(vals, -1), nil
	case "max":
		return extremum(vals, 1), nil
	case "array_agg":
		elems := make([]*value.Value, len(vals))
		for i, v := range vals {
			elems[i] = value.Ref(v)
		}
		return value.Array(elems...), nil
	}
	return value.Null(), nil
}

// extremum returns the least (want<0) or greatest (want>0) value by
// value.Compare, skipping NULLs so a single missing field in a group
// doesn't collapse the whole aggregate to NULL.
func extremum(vals []*value.Value, want int) *value.Value {
	var best *value.Value
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		c := value.Compare(v, best)
		if (want < 0 && c < 0) || (want > 0 && c > 0) {
			best = v
		}
	}
	if best == nil {
		return value.Null()
	}
	return value.Ref(best)
}
