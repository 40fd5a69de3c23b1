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

package value

import (
	"math"
	"strconv"
	"strings"
)

// ToReal implements the numeric-coercion contract from spec.md §4.3:
// false -> 0, true -> 1, real -> itself, a string parses only if the
// *whole* string (no leading whitespace) is consumed by the conversion;
// NULL/missing/anything else fails. ok is false on failure, in which case
// the returned float is not meaningful (callers that need the "numeric
// conversion failure is silent" contract from spec.md §7 substitute their
// own zero/NaN convention at the call site).
func ToReal(v *Value) (f float64, ok bool) {
	switch v.Kind() {
	case KindFalse:
		return 0, true
	case KindTrue:
		return 1, true
	case KindReal:
		return v.num, true
	case KindString:
		if v.str == "" || v.str[0] == ' ' || v.str[0] == '\t' {
			return 0, false
		}
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return math.NaN(), false
}

// ToInt32 converts v to a 32-bit signed integer for the bitwise/shift/%
// operators, truncating a real toward zero. Non-numeric values convert
// via ToReal first; failure yields 0.
func ToInt32(v *Value) int32 {
	f, ok := ToReal(v)
	if !ok {
		return 0
	}
	return int32(int64(f))
}

// TrimmedToReal is like ToReal but tolerates surrounding whitespace,
// matching how the evaluator coerces OFFSET/LIMIT expressions (which are
// rounded to an integer rather than used verbatim).
func TrimmedToReal(v *Value) (f float64, ok bool) {
	if v.Kind() == KindString {
		trimmed := strings.TrimSpace(v.str)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return ToReal(v)
}
