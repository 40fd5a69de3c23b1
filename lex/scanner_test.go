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

package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanAll(src string) []Token {
	s := New([]byte(src))
	var toks []Token
	for {
		tok, _, _ := s.Scan()
		if tok == EOF {
			break
		}
		if tok == SPACE {
			continue
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestScanKeywordsAreCaseSensitive(t *testing.T) {
	assert.Equal(t, []Token{SELECT}, scanAll("SELECT"))
	assert.Equal(t, []Token{IDENT}, scanAll("select"))
}

func TestScanSelectStatement(t *testing.T) {
	got := scanAll(`SELECT a, b.c FROM x WHERE a == 1`)
	want := []Token{SELECT, IDENT, COMMA, IDENT, DOT, IDENT, FROM, IDENT, WHERE, IDENT, EQ, NUMBER}
	assert.Equal(t, want, got)
}

func TestScanOperators(t *testing.T) {
	got := scanAll(`== != <= >= << >> && || | & ! ~ < > + - * / %`)
	want := []Token{EQ, NE, LE, GE, SHL, SHR, AND, OR, BITOR, BITAND, BANG, TILDE, LT, GT, ADD, SUB, MUL, DIV, MOD}
	assert.Equal(t, want, got)
}

func TestScanNumbers(t *testing.T) {
	cases := map[string]Token{
		"123":     NUMBER,
		"1.5":     NUMBER,
		"1e10":    NUMBER,
		"1e+10":   NUMBER,
		"1e-10":   NUMBER,
		"1.5e3":   NUMBER,
		"1e":      ILLEGAL,
		"1e+":     ILLEGAL,
		"1abc":    ILLEGAL,
	}
	for src, want := range cases {
		s := New([]byte(src))
		tok, lit, _ := s.Scan()
		assert.Equal(t, want, tok, "scanning %q got literal %q", src, lit)
	}
}

func TestScanString(t *testing.T) {
	s := New([]byte(`"hello ""world"""`))
	tok, lit, _ := s.Scan()
	assert.Equal(t, STRING, tok)
	assert.Equal(t, `"hello ""world"""`, lit)
}

func TestScanUnterminatedString(t *testing.T) {
	s := New([]byte(`"hello`))
	tok, _, _ := s.Scan()
	assert.Equal(t, ILLEGAL, tok)
}

func TestScanComments(t *testing.T) {
	got := scanAll("SELECT -- a line comment\n a /* block\ncomment */ FROM b")
	want := []Token{SELECT, IDENT, FROM, IDENT}
	assert.Equal(t, want, got)
}

func TestScanBraceAndBracketTokens(t *testing.T) {
	got := scanAll(`{ } [ ]`)
	want := []Token{LBRACE, RBRACE, LBRACK, RBRACK}
	assert.Equal(t, want, got)
}

func TestScanStructAndArrayConstructorSyntax(t *testing.T) {
	got := scanAll(`{a:1,b:"x"}`)
	want := []Token{LBRACE, IDENT, COLON, NUMBER, COMMA, IDENT, COLON, STRING, RBRACE}
	assert.Equal(t, want, got)

	got = scanAll(`[1, a+1]`)
	want = []Token{LBRACK, NUMBER, COMMA, IDENT, ADD, NUMBER, RBRACK}
	assert.Equal(t, want, got)
}

func TestScanIndexExpression(t *testing.T) {
	got := scanAll(`t.b[0]`)
	want := []Token{IDENT, DOT, IDENT, LBRACK, NUMBER, RBRACK}
	assert.Equal(t, want, got)
}

func TestScanEOF(t *testing.T) {
	s := New([]byte(``))
	tok, _, _ := s.Scan()
	assert.Equal(t, EOF, tok)
}
