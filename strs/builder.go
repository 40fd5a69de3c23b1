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

// Package strs provides a growable byte buffer used to render JSON values.
package strs

import (
	"bytes"
	"strconv"
)

// Builder is a thin wrapper around bytes.Buffer with helpers for the
// escaping rules xjd1 renders JSON text with.
type Builder struct {
	buf bytes.Buffer
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) {
	b.buf.WriteByte(c)
}

// WriteString appends s verbatim.
func (b *Builder) WriteString(s string) {
	b.buf.WriteString(s)
}

// WriteReal appends the canonical rendering of a float64, matching the
// JSON value service's `%.17g`-equivalent contract (shortest round-trip
// representation, not a fixed-precision one).
func (b *Builder) WriteReal(f float64) {
	b.buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

// WriteQuoted appends s as a double-quoted JSON string, escaping `"` and
// `\` and the control characters the render contract promises.
func (b *Builder) WriteQuoted(s string) {
	b.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.buf.WriteString(`\"`)
		case '\\':
			b.buf.WriteString(`\\`)
		case '\b':
			b.buf.WriteString(`\b`)
		case '\f':
			b.buf.WriteString(`\f`)
		case '\n':
			b.buf.WriteString(`\n`)
		case '\r':
			b.buf.WriteString(`\r`)
		case '\t':
			b.buf.WriteString(`\t`)
		default:
			b.buf.WriteByte(c)
		}
	}
	b.buf.WriteByte('"')
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// String returns the accumulated contents.
func (b *Builder) String() string {
	return b.buf.String()
}

// Bytes returns the accumulated contents without copying.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
