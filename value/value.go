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

// Package value implements the JSON value model: a tagged union with
// reference-counted, copy-on-write sharing of array/struct substructure.
package value

import "math"

// Kind is the tag of a JSON value.
type Kind uint8

// Tag ordinals, in the total order used by Compare: FALSE, TRUE, REAL,
// NULL, STRING, ARRAY, STRUCT.
const (
	KindFalse Kind = iota
	KindTrue
	KindReal
	KindNull
	KindString
	KindArray
	KindStruct
)

// arenaSentinel is the refcount used to mark a value as arena-owned.
// Decrementing it in Free never reaches zero, so arena values are never
// individually released; they die with the arena.
const arenaSentinel = math.MaxInt32

// field is one (label, value) pair of a struct. Labels are never
// deduplicated at parse time; first-match wins on lookup.
type field struct {
	label string
	val   *Value
}

// Value is a JSON value: exactly one of the Kind variants is active.
// Containers (KindArray, KindStruct) hold references to child values,
// not copies; Edit performs the one-level clone that copy-on-write
// editing requires.
type Value struct {
	kind Kind
	num  float64
	str  string
	arr  []*Value
	obj  []field
	rc   *int32
}

// New allocates a fresh NULL value with refcount 1.
func New() *Value {
	rc := int32(1)
	return &Value{kind: KindNull, rc: &rc}
}

// Null, True and False return fresh singleton-shaped values of their kind.
func Null() *Value  { return newRC(&Value{kind: KindNull}) }
func True() *Value  { return newRC(&Value{kind: KindTrue}) }
func False() *Value { return newRC(&Value{kind: KindFalse}) }

// Bool returns True() or False() depending on b.
func Bool(b bool) *Value {
	if b {
		return True()
	}
	return False()
}

// Real returns a fresh numeric value.
func Real(f float64) *Value {
	return newRC(&Value{kind: KindReal, num: f})
}

// Str returns a fresh string value. The byte sequence is not required to
// be valid UTF-8.
func Str(s string) *Value {
	return newRC(&Value{kind: KindString, str: s})
}

// Array returns a fresh array value taking ownership of the given
// elements (each element's ref is consumed, mirroring Insert's contract
// for struct fields).
func Array(elems ...*Value) *Value {
	v := &Value{kind: KindArray, arr: append([]*Value{}, elems...)}
	return newRC(v)
}

// Struct returns a fresh, empty struct value.
func Struct() *Value {
	return newRC(&Value{kind: KindStruct})
}

func newRC(v *Value) *Value {
	rc := int32(1)
	v.rc = &rc
	return v
}

// Arena marks v as arena-owned: Free on it (or anything cloned from it
// before the clone is first edited) becomes a no-op, since its storage
// lives and dies with the statement arena instead of the heap.
func Arena(v *Value) *Value {
	s := int32(arenaSentinel)
	v.rc = &s
	return v
}

// Kind reports v's tag.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull, IsArray, IsStruct, IsString, IsReal, IsBool report v's tag.
func (v *Value) IsNull() bool   { return v.Kind() == KindNull }
func (v *Value) IsArray() bool  { return v.Kind() == KindArray }
func (v *Value) IsStruct() bool { return v.Kind() == KindStruct }
func (v *Value) IsString() bool { return v.Kind() == KindString }
func (v *Value) IsReal() bool   { return v.Kind() == KindReal }
func (v *Value) IsBool() bool   { return v.Kind() == KindTrue || v.Kind() == KindFalse }

// Ref increments v's reference count and returns v, for the common
// "take a reference and hand it onward" idiom.
func Ref(v *Value) *Value {
	if v == nil || v.rc == nil {
		return v
	}
	if *v.rc != arenaSentinel {
		*v.rc++
	}
	return v
}

// Free decrements v's reference count; at zero it releases v's
// substructure recursively. Arena-owned values (and nil) are a no-op.
func Free(v *Value) {
	if v == nil || v.rc == nil {
		return
	}
	if *v.rc == arenaSentinel {
		return
	}
	*v.rc--
	if *v.rc > 0 {
		return
	}
	switch v.kind {
	case KindArray:
		for _, e := range v.arr {
			Free(e)
		}
	case KindStruct:
		for _, f := range v.obj {
			Free(f.val)
		}
	}
	v.arr = nil
	v.obj = nil
}

// Edit returns a value safe to mutate in place: v itself if its refcount
// is 1, or a shallow clone (children acquired by Ref, not deep-copied)
// otherwise. The caller must Free the value it edited once in its place;
// Edit does not consume v's reference, it returns a new one when cloning.
func Edit(v *Value) *Value {
	if v.rc != nil && *v.rc == 1 {
		return v
	}
	clone := &Value{kind: v.kind, num: v.num, str: v.str}
	switch v.kind {
	case KindArray:
		clone.arr = make([]*Value, len(v.arr))
		for i, e := range v.arr {
			clone.arr[i] = Ref(e)
		}
	case KindStruct:
		clone.obj = make([]field, len(v.obj))
		for i, f := range v.obj {
			clone.obj[i] = field{label: f.label, val: Ref(f.val)}
		}
	}
	return newRC(clone)
}

// Len returns the number of elements/fields of an array/struct value, the
// byte length of a string, or 0 for any other kind.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindStruct:
		return len(v.obj)
	case KindString:
		return len(v.str)
	}
	return 0
}

// Elem returns the i'th array element, or nil if v is not an array or i
// is out of range. The returned value is not ref-counted for the caller;
// callers that retain it across a mutation must Ref it themselves.
func (v *Value) Elem(i int) *Value {
	if v.Kind() != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Field returns the first-matching field value for label, or nil.
func (v *Value) Field(label string) *Value {
	if v.Kind() != KindStruct {
		return nil
	}
	for _, f := range v.obj {
		if f.label == label {
			return f.val
		}
	}
	return nil
}

// Labels returns the struct's field labels in insertion order, including
// duplicates if any were inserted.
func (v *Value) Labels() []string {
	if v.Kind() != KindStruct {
		return nil
	}
	out := make([]string, len(v.obj))
	for i, f := range v.obj {
		out[i] = f.label
	}
	return out
}

// Insert appends (label, val) to an editable struct, consuming one
// reference of val. v must already be Edit-safe (refcount 1 or arena).
func Insert(v *Value, label string, val *Value) {
	if v.Kind() != KindStruct {
		return
	}
	v.obj = append(v.obj, field{label: label, val: val})
}

// Append appends val to an editable array, consuming one reference of
// val. v must already be Edit-safe.
func Append(v *Value, val *Value) {
	if v.Kind() != KindArray {
		return
	}
	v.arr = append(v.arr, val)
}

// SetElem replaces the i'th array element in place, consuming one
// reference of val and freeing the value it displaces. v must already be
// Edit-safe and i in range.
func SetElem(v *Value, i int, val *Value) {
	if v.Kind() != KindArray || i < 0 || i >= len(v.arr) {
		return
	}
	Free(v.arr[i])
	v.arr[i] = val
}

// SetField replaces the first-matching field's value in place (or
// appends if label is absent), consuming one reference of val. v must
// already be Edit-safe.
func SetField(v *Value, label string, val *Value) {
	if v.Kind() != KindStruct {
		return
	}
	for i, f := range v.obj {
		if f.label == label {
			Free(f.val)
			v.obj[i].val = val
			return
		}
	}
	Insert(v, label, val)
}

// Truthy implements the JS-style truthiness rule from spec.md §4.5/§9
// Open Question 2: arrays, structs, and true are true; "", 0, NULL and
// false are false; any other (non-empty) string is true.
func Truthy(v *Value) bool {
	switch v.Kind() {
	case KindNull, KindFalse:
		return false
	case KindTrue, KindArray, KindStruct:
		return true
	case KindReal:
		return v.num != 0
	case KindString:
		return v.str != ""
	}
	return false
}

// Real returns the numeric payload of a KindReal value (0 otherwise; use
// ToReal for the full numeric-coercion contract).
func (v *Value) Real() float64 {
	if v.Kind() != KindReal {
		return 0
	}
	return v.num
}

// RawString returns the string payload of a KindString value ("" otherwise).
func (v *Value) RawString() string {
	if v.Kind() != KindString {
		return ""
	}
	return v.str
}
