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

package parse

import (
	"fmt"

	"github.com/xjd1/xjd1/lex"
)

// ParseError reports a syntax error at a source offset, mirroring
// sql/error.go's ParseError{Found, Expected} shape.
type ParseError struct {
	Offset int
	Found  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("parse error at offset %d near %q: %s", e.Offset, e.Found, e.Reason)
	}
	return fmt.Sprintf("parse error at offset %d near %q", e.Offset, e.Found)
}

// buffered is one lookahead slot, used by unscan to push a token back.
type buffered struct {
	tok  lex.Token
	lit  string
	span lex.Span
	has  bool
}

// parser drives the scanner with a one-token pushback buffer, the same
// idiom as sql/parser.go's Parser.buf / scan / unscan, simplified from
// surrealdb's surrounding connection-context machinery down to a plain
// text-in, AST-out function.
type parser struct {
	s          *lex.Scanner
	buf        buffered
	paramIndex int
}

func newParser(src []byte) *parser {
	return &parser{s: lex.New(src)}
}

// scan returns the next non-space token, consuming the pushback buffer
// first if one is pending.
func (p *parser) scan() (lex.Token, string, lex.Span) {
	if p.buf.has {
		p.buf.has = false
		return p.buf.tok, p.buf.lit, p.buf.span
	}
	for {
		tok, lit, span := p.s.Scan()
		if tok == lex.SPACE {
			continue
		}
		return tok, lit, span
	}
}

// unscan pushes the most recently scanned token back onto the buffer.
// Only a single level of pushback is supported, matching the teacher's
// buffer-of-1 idiom.
func (p *parser) unscan(tok lex.Token, lit string, span lex.Span) {
	p.buf = buffered{tok, lit, span, true}
}

// peek scans and immediately unscans, returning the next token kind.
func (p *parser) peek() lex.Token {
	tok, lit, span := p.scan()
	p.unscan(tok, lit, span)
	return tok
}

// mightBe consumes the next token and reports whether it matches one
// of want, leaving the scan position advanced past it. If it does not
// match, the token is pushed back so callers can try another rule.
func (p *parser) mightBe(want ...lex.Token) (lex.Token, string, bool) {
	tok, lit, span := p.scan()
	for _, w := range want {
		if tok == w {
			return tok, lit, true
		}
	}
	p.unscan(tok, lit, span)
	return tok, lit, false
}

// shouldBe consumes the next token, erroring if it is not one of want.
func (p *parser) shouldBe(want ...lex.Token) (lex.Token, string, error) {
	tok, lit, span := p.scan()
	for _, w := range want {
		if tok == w {
			return tok, lit, nil
		}
	}
	return tok, lit, &ParseError{Offset: span.Offset, Found: lit, Reason: fmt.Sprintf("expected %v", want)}
}

// ident consumes an IDENT and returns its text; a keyword token is
// rejected.
func (p *parser) ident() (string, error) {
	tok, lit, span := p.scan()
	if tok != lex.IDENT {
		return "", &ParseError{Offset: span.Offset, Found: lit, Reason: "expected identifier"}
	}
	return lit, nil
}

// Parse parses one or more semicolon-separated statements from src.
func Parse(src []byte) ([]Command, error) {
	p := newParser(src)
	var cmds []Command
	for {
		// skip stray semicolons between statements
		for {
			if _, _, ok := p.mightBe(lex.SEMICOLON); !ok {
				break
			}
		}
		if p.peek() == lex.EOF {
			break
		}
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
		if _, _, ok := p.mightBe(lex.SEMICOLON); !ok {
			if p.peek() != lex.EOF {
				tok, lit, span := p.scan()
				return nil, &ParseError{Offset: span.Offset, Found: lit, Reason: fmt.Sprintf("expected ; or end of input, found %v", tok)}
			}
			break
		}
	}
	return cmds, nil
}

// ParseOne parses exactly one statement, erroring if more than one is
// present (after an optional trailing semicolon).
func ParseOne(src []byte) (Command, error) {
	cmds, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(cmds) != 1 {
		return nil, &ParseError{Reason: fmt.Sprintf("expected exactly one statement, found %d", len(cmds))}
	}
	return cmds[0], nil
}

// ParseFirst parses at most one statement out of src and reports the
// byte offset immediately following it (after its terminating ';' when
// one is present), for callers such as stmt.New that are handed a
// whole script buffer but prepare one statement at a time.
func ParseFirst(src []byte) (Command, int, error) {
	p := newParser(src)
	for {
		if _, _, ok := p.mightBe(lex.SEMICOLON); !ok {
			break
		}
	}
	if p.peek() == lex.EOF {
		return nil, 0, &ParseError{Reason: "no statement found"}
	}
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, 0, err
	}
	tok, lit, span := p.scan()
	if tok == lex.SEMICOLON {
		return cmd, span.Offset + span.Length, nil
	}
	p.unscan(tok, lit, span)
	return cmd, span.Offset, nil
}

func (p *parser) parseCommand() (Command, error) {
	tok, lit, span := p.scan()
	switch tok {
	case lex.SELECT:
		p.unscan(tok, lit, span)
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		return &SelectCmd{Query: q}, nil
	case lex.INSERT:
		return p.parseInsert()
	case lex.UPDATE:
		return p.parseUpdate()
	case lex.DELETE:
		return p.parseDelete()
	case lex.CREATE:
		return p.parseCreateCollection()
	case lex.DROP:
		return p.parseDropCollection()
	case lex.BEGIN:
		return &TxnCmd{Kind: TxnBegin}, nil
	case lex.COMMIT:
		return &TxnCmd{Kind: TxnCommit}, nil
	case lex.ROLLBACK:
		return &TxnCmd{Kind: TxnRollback}, nil
	case lex.PRAGMA:
		return p.parsePragma()
	}
	return nil, &ParseError{Offset: span.Offset, Found: lit, Reason: "expected a statement"}
}
