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

import "github.com/xjd1/xjd1/lex"

// parseQuery parses one SELECT and any compound (UNION/EXCEPT/INTERSECT)
// continuations chained onto it, grounded on sql/select.go's
// parseSelectStatement clause-by-clause shape.
func (p *parser) parseQuery() (*Query, error) {
	if _, _, err := p.shouldBe(lex.SELECT); err != nil {
		return nil, err
	}

	q := &Query{}

	if _, _, ok := p.mightBe(lex.DISTINCT); ok {
		q.Distinct = true
	}

	cols, err := p.parseResultColumns()
	if err != nil {
		return nil, err
	}
	q.Columns = cols

	if _, _, ok := p.mightBe(lex.FROM); ok {
		src, err := p.parseDataSrc()
		if err != nil {
			return nil, err
		}
		q.From = src
	}

	if _, _, ok := p.mightBe(lex.WHERE); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = e
	}

	if _, _, ok := p.mightBe(lex.GROUP); ok {
		if _, _, err := p.shouldBe(lex.BY); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = exprs
		if _, _, ok := p.mightBe(lex.HAVING); ok {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			q.Having = e
		}
	}

	if _, _, ok := p.mightBe(lex.ORDER); ok {
		if _, _, err := p.shouldBe(lex.BY); err != nil {
			return nil, err
		}
		terms, err := p.parseOrderTerms()
		if err != nil {
			return nil, err
		}
		q.OrderBy = terms
	}

	if _, _, ok := p.mightBe(lex.LIMIT); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Limit = e
	}

	if _, _, ok := p.mightBe(lex.OFFSET); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Offset = e
	}

	op, all, ok := p.parseCompoundOp()
	if ok {
		next, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		q.Compound = op
		q.CompoundAll = all
		q.Next = next
	}

	return q, nil
}

func (p *parser) parseCompoundOp() (CompoundOp, bool, bool) {
	if _, _, ok := p.mightBe(lex.UNION); ok {
		all := false
		if _, _, ok := p.mightBe(lex.ALL); ok {
			all = true
		}
		return CompoundUnion, all, true
	}
	if _, _, ok := p.mightBe(lex.EXCEPT); ok {
		return CompoundExcept, false, true
	}
	if _, _, ok := p.mightBe(lex.INTERSECT); ok {
		return CompoundIntersect, false, true
	}
	return CompoundNone, false, false
}

func (p *parser) parseResultColumns() ([]ResultColumn, error) {
	var cols []ResultColumn
	for {
		if tok, _, ok := p.mightBe(lex.MUL); ok {
			_ = tok
			cols = append(cols, ResultColumn{Star: true})
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			col := ResultColumn{Expr: e}
			if _, _, ok := p.mightBe(lex.AS); ok {
				alias, err := p.ident()
				if err != nil {
					return nil, err
				}
				col.Alias = alias
			}
			cols = append(cols, col)
		}
		if _, _, ok := p.mightBe(lex.COMMA); !ok {
			break
		}
	}
	return cols, nil
}

func (p *parser) parseOrderTerms() ([]OrderTerm, error) {
	var terms []OrderTerm
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		term := OrderTerm{Expr: e}
		if _, _, ok := p.mightBe(lex.DESC); ok {
			term.Desc = true
		} else {
			p.mightBe(lex.ASC)
		}
		terms = append(terms, term)
		if _, _, ok := p.mightBe(lex.COMMA); !ok {
			break
		}
	}
	return terms, nil
}

// parseDataSrc parses one FROM clause: a comma-joined list of terms,
// each of which may be a collection name or a parenthesized subquery,
// optionally followed by one or more postfix FLATTEN/EACH operators.
func (p *parser) parseDataSrc() (DataSrc, error) {
	left, err := p.parseDataSrcTerm()
	if err != nil {
		return nil, err
	}
	for {
		if _, _, ok := p.mightBe(lex.COMMA); !ok {
			break
		}
		right, err := p.parseDataSrcTerm()
		if err != nil {
			return nil, err
		}
		left = &JoinSrc{Left: left, Right: right}
	}
	return left, nil
}

// parseDataSrcTerm parses one base source (a collection name or a
// parenthesized subquery, each with its own optional AS alias), then
// folds in any trailing `FLATTEN(exprs) [AS alias]` / `EACH(exprs) [AS
// alias]` operators left-to-right, each wrapping the previous source.
func (p *parser) parseDataSrcTerm() (DataSrc, error) {
	var src DataSrc
	if _, _, ok := p.mightBe(lex.LPAREN); ok {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
			return nil, err
		}
		sub := &SubquerySrc{Query: q}
		if _, _, ok := p.mightBe(lex.AS); ok {
			alias, err := p.ident()
			if err != nil {
				return nil, err
			}
			sub.Alias = alias
		} else if p.peek() == lex.IDENT {
			alias, _ := p.ident()
			sub.Alias = alias
		}
		src = sub
	} else {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		coll := &CollectionSrc{Collection: name, Alias: name}
		if _, _, ok := p.mightBe(lex.AS); ok {
			alias, err := p.ident()
			if err != nil {
				return nil, err
			}
			coll.Alias = alias
		} else if p.peek() == lex.IDENT {
			alias, _ := p.ident()
			coll.Alias = alias
		}
		src = coll
	}

	for {
		each := false
		if _, _, ok := p.mightBe(lex.FLATTEN); ok {
			// each stays false
		} else if _, _, ok := p.mightBe(lex.EACH); ok {
			each = true
		} else {
			break
		}
		if _, _, err := p.shouldBe(lex.LPAREN); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
			return nil, err
		}
		fs := &FlattenSrc{Src: src, Each: each, Exprs: exprs}
		if _, _, ok := p.mightBe(lex.AS); ok {
			alias, err := p.ident()
			if err != nil {
				return nil, err
			}
			fs.Alias = alias
		} else if p.peek() == lex.IDENT {
			alias, _ := p.ident()
			fs.Alias = alias
		}
		src = fs
	}
	return src, nil
}
