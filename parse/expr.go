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
	"strings"

	"github.com/xjd1/xjd1/lex"
	"github.com/xjd1/xjd1/value"
)

// parseExpr is the entry point for one expression, grounded on
// sql/cond.go's parseCond / sql/exprs.go's parseExpr precedence chain,
// generalized into a single recursive-descent ladder covering every
// operator in spec.md §4.2's precedence table (lowest to highest):
// ternary, ||, &&, equality, relational (incl. LIKE/IN/BETWEEN),
// bitwise-or, bitwise-and, shift, additive, multiplicative, unary,
// postfix, primary.
func (p *parser) parseExpr() (Expr, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, _, ok := p.mightBe(lex.QMARK); ok {
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.COLON); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Cond{Cond: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, _, ok := p.mightBe(lex.OR); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinOr, Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		if _, _, ok := p.mightBe(lex.AND); !ok {
			return left, nil
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinAnd, Left: left, Right: right}
	}
}

func (p *parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		if _, _, ok := p.mightBe(lex.EQ); ok {
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinEq, Left: left, Right: right}
			continue
		}
		if _, _, ok := p.mightBe(lex.NE); ok {
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinNe, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseRelational() (Expr, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lex.LT):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinLt, Left: left, Right: right}
		case p.match(lex.LE):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinLe, Left: left, Right: right}
		case p.match(lex.GT):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinGt, Left: left, Right: right}
		case p.match(lex.GE):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinGe, Left: left, Right: right}
		case p.match(lex.LIKE):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinLike, Left: left, Right: right}
		case p.match(lex.IN):
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinIn, Left: left, Right: right}
		case p.peek() == lex.NOT:
			save := p.buf
			p.mightBe(lex.NOT)
			if p.match(lex.BETWEEN) {
				lo, hi, err := p.parseBetweenBounds()
				if err != nil {
					return nil, err
				}
				left = &Between{X: left, Lo: lo, Hi: hi, Not: true}
				continue
			}
			p.buf = save
			return left, nil
		case p.match(lex.BETWEEN):
			lo, hi, err := p.parseBetweenBounds()
			if err != nil {
				return nil, err
			}
			left = &Between{X: left, Lo: lo, Hi: hi}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseBetweenBounds() (Expr, Expr, error) {
	lo, err := p.parseBitOr()
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := p.shouldBe(lex.AND); err != nil {
		return nil, nil, err
	}
	hi, err := p.parseBitOr()
	if err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

// match consumes tok if present, reporting whether it matched.
func (p *parser) match(tok lex.Token) bool {
	_, _, ok := p.mightBe(tok)
	return ok
}

func (p *parser) parseBitOr() (Expr, error) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lex.BITOR) {
		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinBitOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseBitAnd() (Expr, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.match(lex.BITAND) {
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinBitAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseShift() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(lex.SHL) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinShl, Left: left, Right: right}
			continue
		}
		if p.match(lex.SHR) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinShr, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(lex.ADD) {
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinAdd, Left: left, Right: right}
			continue
		}
		if p.match(lex.SUB) {
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinSub, Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lex.MUL):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinMul, Left: left, Right: right}
		case p.match(lex.DIV):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinDiv, Left: left, Right: right}
		case p.match(lex.MOD):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: BinMod, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.match(lex.SUB) {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryNeg, X: x}, nil
	}
	if p.match(lex.BANG) {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryNot, X: x}, nil
	}
	if p.match(lex.TILDE) {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryBitNot, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if p.match(lex.DOT) {
			label, err := p.ident()
			if err != nil {
				return nil, err
			}
			x = &Field{X: x, Label: label}
			continue
		}
		if p.match(lex.LBRACK) {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RBRACK); err != nil {
				return nil, err
			}
			x = &Index{X: x, Index: idx}
			continue
		}
		return x, nil
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok, lit, span := p.scan()
	switch tok {
	case lex.NUMBER, lex.STRING, lex.TRUE, lex.FALSE, lex.NULL:
		v, err := parseLiteralToken(tok, lit)
		if err != nil {
			return nil, &ParseError{Offset: span.Offset, Found: lit, Reason: err.Error()}
		}
		return &Literal{Value: v}, nil
	case lex.LBRACE:
		return p.parseStructLit()
	case lex.LBRACK:
		return p.parseArrayLit()
	case lex.QMARK:
		p.paramIndex++
		return &Param{Index: p.paramIndex}, nil
	case lex.SUB:
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryNeg, X: x}, nil
	case lex.LPAREN:
		if p.peek() == lex.SELECT {
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return nil, err
			}
			return &Subquery{Query: q}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case lex.IDENT:
		if lit == "doc" && p.peek() == lex.LPAREN {
			p.scan()
			if _, _, ok := p.mightBe(lex.RPAREN); ok {
				return &Doc{}, nil
			}
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return nil, err
			}
			return &Doc{Name: name}, nil
		}
		if lit == "exists" && p.peek() == lex.LPAREN {
			p.scan()
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return nil, err
			}
			return &Exists{Query: q}, nil
		}
		if p.peek() == lex.LPAREN {
			p.scan()
			call := &Call{Name: lit}
			if p.peek() == lex.MUL {
				p.scan()
				call.Star = true
			} else if p.peek() != lex.RPAREN {
				args, err := p.parseExprList()
				if err != nil {
					return nil, err
				}
				call.Args = args
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return nil, err
			}
			return call, nil
		}
		return &Ident{Path: []string{lit}}, nil
	}
	return nil, &ParseError{Offset: span.Offset, Found: lit, Reason: "expected an expression"}
}

// parseStructLit parses a `{label: expr, ...}` constructor, the LBRACE
// already consumed. A label is either a bare identifier or a quoted
// string; an empty `{}` is a zero-field struct.
func (p *parser) parseStructLit() (Expr, error) {
	lit := &StructLit{}
	if _, _, ok := p.mightBe(lex.RBRACE); ok {
		return lit, nil
	}
	for {
		tok, raw, span := p.scan()
		var label string
		switch tok {
		case lex.IDENT:
			label = raw
		case lex.STRING:
			label = dequoteString(raw)
		default:
			return nil, &ParseError{Offset: span.Offset, Found: raw, Reason: "expected struct field label"}
		}
		if _, _, err := p.shouldBe(lex.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, StructField{Label: label, Value: val})
		if !p.match(lex.COMMA) {
			break
		}
	}
	if _, _, err := p.shouldBe(lex.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseArrayLit parses a `[expr, ...]` constructor, the LBRACK already
// consumed. An empty `[]` is a zero-element array.
func (p *parser) parseArrayLit() (Expr, error) {
	lit := &ArrayLit{}
	if _, _, ok := p.mightBe(lex.RBRACK); ok {
		return lit, nil
	}
	elems, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	lit.Elems = elems
	if _, _, err := p.shouldBe(lex.RBRACK); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseExprList parses a comma-separated list of expressions, used for
// GROUP BY and function-call arguments.
func (p *parser) parseExprList() ([]Expr, error) {
	var list []Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.match(lex.COMMA) {
			break
		}
	}
	return list, nil
}

// parseLiteralToken turns a scanned literal token into a value.Value.
// NUMBER reuses value.Parse, whose numeric grammar matches the
// scanner's; STRING is dequoted by the scanner's own `""`-escape rule
// rather than value.Parse's backslash-escape JSON grammar (reserved
// for stored-document text); TRUE/FALSE/NULL are keywords constructed
// directly.
func parseLiteralToken(tok lex.Token, lit string) (*value.Value, error) {
	switch tok {
	case lex.TRUE:
		return value.True(), nil
	case lex.FALSE:
		return value.False(), nil
	case lex.NULL:
		return value.Null(), nil
	case lex.STRING:
		return value.Str(dequoteString(lit)), nil
	case lex.NUMBER:
		return value.Parse([]byte(lit))
	}
	return value.Null(), nil
}

// dequoteString strips the surrounding quotes from a scanner-produced
// STRING literal and collapses its `""` escaped-quote pairs to a
// single `"`, per spec.md §4.1.
func dequoteString(lit string) string {
	inner := lit[1 : len(lit)-1]
	if !strings.Contains(inner, `""`) {
		return inner
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '"' && i+1 < len(inner) && inner[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
