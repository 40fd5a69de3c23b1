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

// parseInsert handles both `INSERT INTO coll VALUE <json-expr>` and
// `INSERT INTO coll <select>`, grounded on sql/data.go's parseData
// clause dispatch.
func (p *parser) parseInsert() (Command, error) {
	if _, _, err := p.shouldBe(lex.INTO); err != nil {
		return nil, err
	}
	coll, err := p.ident()
	if err != nil {
		return nil, err
	}

	cmd := &InsertCmd{Collection: coll}

	if _, _, ok := p.mightBe(lex.VALUE); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Value = e
		return cmd, nil
	}

	if p.peek() == lex.SELECT {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		cmd.Query = q
		return cmd, nil
	}

	tok, lit, span := p.scan()
	return nil, &ParseError{Offset: span.Offset, Found: lit, Reason: "expected VALUE or SELECT after INSERT INTO, found " + tok.String()}
}

// parseUpdate handles `UPDATE coll SET a=expr[, ...] [WHERE cond]`,
// grounded on sql/data.go's parseSet.
func (p *parser) parseUpdate() (Command, error) {
	coll, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.shouldBe(lex.SET); err != nil {
		return nil, err
	}

	cmd := &UpdateCmd{Collection: coll}
	for {
		target, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Sets = append(cmd.Sets, Assign{Target: target, Value: val})
		if _, _, ok := p.mightBe(lex.COMMA); !ok {
			break
		}
	}

	if _, _, ok := p.mightBe(lex.WHERE); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Where = e
	}

	if _, _, ok := p.mightBe(lex.ELSE); ok {
		if _, _, err := p.shouldBe(lex.INSERT); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.ElseInsert = e
	}
	return cmd, nil
}

// parseLValue parses the restricted expression grammar valid as an
// UPDATE assignment target: a bare identifier followed by any mix of
// `.label` and `[expr]` suffixes. Arithmetic and other computed forms
// are rejected by the caller in stmt, not here, since doing so requires
// no further lookahead than parseExpr already performs.
func (p *parser) parseLValue() (Expr, error) {
	return p.parsePostfix()
}

// parseDelete handles `DELETE FROM coll [WHERE cond]`.
func (p *parser) parseDelete() (Command, error) {
	if _, _, err := p.shouldBe(lex.FROM); err != nil {
		return nil, err
	}
	coll, err := p.ident()
	if err != nil {
		return nil, err
	}
	cmd := &DeleteCmd{Collection: coll}
	if _, _, ok := p.mightBe(lex.WHERE); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Where = e
	}
	return cmd, nil
}

func (p *parser) parseCreateCollection() (Command, error) {
	if _, _, err := p.shouldBe(lex.COLLECTION); err != nil {
		return nil, err
	}
	cmd := &CreateCollectionCmd{}
	if _, _, ok := p.mightBe(lex.IF); ok {
		if _, _, err := p.shouldBe(lex.NOT); err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.EXISTS); err != nil {
			return nil, err
		}
		cmd.IfNotExists = true
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	cmd.Collection = name
	return cmd, nil
}

func (p *parser) parseDropCollection() (Command, error) {
	if _, _, err := p.shouldBe(lex.COLLECTION); err != nil {
		return nil, err
	}
	cmd := &DropCollectionCmd{}
	if _, _, ok := p.mightBe(lex.IF); ok {
		if _, _, err := p.shouldBe(lex.EXISTS); err != nil {
			return nil, err
		}
		cmd.IfExists = true
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	cmd.Collection = name
	return cmd, nil
}

func (p *parser) parsePragma() (Command, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	cmd := &PragmaCmd{Name: name}
	if _, _, ok := p.mightBe(lex.EQ); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cmd.Value = e
	}
	return cmd, nil
}
