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

// Compare implements the total order from spec.md §4.3/GLOSSARY: first by
// tag ordinal (FALSE, TRUE, REAL, NULL, STRING, ARRAY, STRUCT), then
// structurally within a tag. It returns -1, 0, or 1.
//
// Grounded on util/comp.Comp's cross-type dispatch (same idea, generalized
// from interface{} dynamic typing to the explicit Kind tag).
func Compare(a, b *Value) int {
	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch ka {
	case KindFalse, KindTrue, KindNull:
		return 0
	case KindReal:
		return compareFloat(a.num, b.num)
	case KindString:
		return compareBytes(a.str, b.str)
	case KindArray:
		return compareArray(a, b)
	case KindStruct:
		return compareStruct(a, b)
	}
	return 0
}

func compareFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func compareBytes(a, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareArray compares element-wise, with shorter-is-less as the
// tie-breaker when one is a prefix of the other.
func compareArray(a, b *Value) int {
	n := len(a.arr)
	if len(b.arr) < n {
		n = len(b.arr)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.arr[i], b.arr[i]); c != 0 {
			return c
		}
	}
	return compareLen(len(a.arr), len(b.arr))
}

// compareStruct compares label-wise in insertion order: label first,
// value second, then shorter-is-less.
func compareStruct(a, b *Value) int {
	n := len(a.obj)
	if len(b.obj) < n {
		n = len(b.obj)
	}
	for i := 0; i < n; i++ {
		if c := compareBytes(a.obj[i].label, b.obj[i].label); c != 0 {
			return c
		}
		if c := Compare(a.obj[i].val, b.obj[i].val); c != 0 {
			return c
		}
	}
	return compareLen(len(a.obj), len(b.obj))
}

func compareLen(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Equal reports whether Compare(a, b) == 0.
func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}
