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

import "github.com/xjd1/xjd1/strs"

// Render writes the deterministic text form of v to out. Numbers render
// via the shortest round-tripping decimal form, strings are quoted with
// the standard JSON escapes, and empty containers render canonically as
// "[]"/"{}" (spec.md §9 Open Question 1: the source's bug of emitting an
// unterminated "[" / "{" for empties is not reproduced).
func Render(out *strs.Builder, v *Value) {
	if v == nil {
		out.WriteString("null")
		return
	}
	switch v.kind {
	case KindNull:
		out.WriteString("null")
	case KindFalse:
		out.WriteString("false")
	case KindTrue:
		out.WriteString("true")
	case KindReal:
		out.WriteReal(v.num)
	case KindString:
		out.WriteQuoted(v.str)
	case KindArray:
		out.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				out.WriteByte(',')
			}
			Render(out, e)
		}
		out.WriteByte(']')
	case KindStruct:
		out.WriteByte('{')
		for i, f := range v.obj {
			if i > 0 {
				out.WriteByte(',')
			}
			out.WriteQuoted(f.label)
			out.WriteByte(':')
			Render(out, f.val)
		}
		out.WriteByte('}')
	}
}

// RenderString is a convenience wrapper returning Render's output as a
// string.
func RenderString(v *Value) string {
	b := strs.New()
	Render(b, v)
	return b.String()
}

// ToString stringifies v: primitive values stringify directly (numbers
// with the same rendering Render uses, strings without quoting), arrays
// and structs stringify via Render.
func ToString(v *Value) string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindReal:
		b := strs.New()
		b.WriteReal(v.num)
		return b.String()
	case KindString:
		return v.str
	default:
		return RenderString(v)
	}
}
