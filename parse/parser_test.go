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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleSelect(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT a, b AS bb FROM coll WHERE a > 1 ORDER BY a DESC LIMIT 10 OFFSET 5`))
	require.NoError(t, err)
	sel, ok := cmd.(*SelectCmd)
	require.True(t, ok)
	assert.Len(t, sel.Query.Columns, 2)
	assert.Equal(t, "bb", sel.Query.Columns[1].Alias)
	require.NotNil(t, sel.Query.From)
	coll, ok := sel.Query.From.(*CollectionSrc)
	require.True(t, ok)
	assert.Equal(t, "coll", coll.Collection)
	require.NotNil(t, sel.Query.Where)
	require.Len(t, sel.Query.OrderBy, 1)
	assert.True(t, sel.Query.OrderBy[0].Desc)
	require.NotNil(t, sel.Query.Limit)
	require.NotNil(t, sel.Query.Offset)
}

func TestParseSelectStar(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT * FROM coll`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	require.Len(t, sel.Query.Columns, 1)
	assert.True(t, sel.Query.Columns[0].Star)
}

func TestParseCompoundUnion(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT a FROM x UNION SELECT a FROM y`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	assert.Equal(t, CompoundUnion, sel.Query.Compound)
	assert.False(t, sel.Query.CompoundAll)
	require.NotNil(t, sel.Query.Next)
}

func TestParseCompoundUnionAll(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT a FROM x UNION ALL SELECT a FROM y`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	assert.True(t, sel.Query.CompoundAll)
}

func TestParseJoin(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT * FROM a, b`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	join, ok := sel.Query.From.(*JoinSrc)
	require.True(t, ok)
	_, ok = join.Left.(*CollectionSrc)
	assert.True(t, ok)
	_, ok = join.Right.(*CollectionSrc)
	assert.True(t, ok)
}

func TestParseFlattenAndEach(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT x.v FROM t FLATTEN(t.b) AS x`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	fl, ok := sel.Query.From.(*FlattenSrc)
	require.True(t, ok)
	assert.False(t, fl.Each)
	assert.Equal(t, "x", fl.Alias)
	require.Len(t, fl.Exprs, 1)
	_, ok = fl.Src.(*CollectionSrc)
	assert.True(t, ok)

	cmd, err = ParseOne([]byte(`SELECT x.v FROM t EACH(t.b) AS x`))
	require.NoError(t, err)
	sel = cmd.(*SelectCmd)
	fl, ok = sel.Query.From.(*FlattenSrc)
	require.True(t, ok)
	assert.True(t, fl.Each)
	assert.Equal(t, "x", fl.Alias)
}

func TestParseSubquerySource(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT * FROM (SELECT a FROM x) AS y`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	sub, ok := sel.Query.From.(*SubquerySrc)
	require.True(t, ok)
	assert.Equal(t, "y", sub.Alias)
}

func TestParseInsertValue(t *testing.T) {
	cmd, err := ParseOne([]byte(`INSERT INTO coll VALUE {"a":1}`))
	require.NoError(t, err)
	ins := cmd.(*InsertCmd)
	assert.Equal(t, "coll", ins.Collection)
	require.NotNil(t, ins.Value)
}

func TestParseInsertSelect(t *testing.T) {
	cmd, err := ParseOne([]byte(`INSERT INTO coll SELECT a FROM other`))
	require.NoError(t, err)
	ins := cmd.(*InsertCmd)
	require.NotNil(t, ins.Query)
}

func TestParseUpdateSet(t *testing.T) {
	cmd, err := ParseOne([]byte(`UPDATE coll SET a.b = 1, c[0] = 2 WHERE a > 0`))
	require.NoError(t, err)
	upd := cmd.(*UpdateCmd)
	require.Len(t, upd.Sets, 2)
	idx, ok := upd.Sets[1].Target.(*Index)
	require.True(t, ok)
	ident, ok := idx.X.(*Ident)
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, ident.Path)
	require.NotNil(t, upd.Where)
}

func TestParseBracketIndexExpression(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT t.b[0] FROM t`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	idx, ok := sel.Query.Columns[0].Expr.(*Index)
	require.True(t, ok)
	_, ok = idx.X.(*Field)
	assert.True(t, ok)
}

func TestParseStructConstructorUnquotedLabels(t *testing.T) {
	cmd, err := ParseOne([]byte(`INSERT INTO t VALUE {a:1,b:"x"}`))
	require.NoError(t, err)
	ins := cmd.(*InsertCmd)
	lit, ok := ins.Value.(*StructLit)
	require.True(t, ok)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, "a", lit.Fields[0].Label)
	assert.Equal(t, "b", lit.Fields[1].Label)
	_, ok = lit.Fields[1].Value.(*Literal)
	assert.True(t, ok)
}

func TestParseStructConstructorExpressionValues(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT {a: 1+1, b: x} FROM t`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	lit, ok := sel.Query.Columns[0].Expr.(*StructLit)
	require.True(t, ok)
	require.Len(t, lit.Fields, 2)
	_, ok = lit.Fields[0].Value.(*Binary)
	assert.True(t, ok)
	_, ok = lit.Fields[1].Value.(*Ident)
	assert.True(t, ok)
}

func TestParseArrayConstructor(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT [1, a+1, "x"] FROM t`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	lit, ok := sel.Query.Columns[0].Expr.(*ArrayLit)
	require.True(t, ok)
	require.Len(t, lit.Elems, 3)
	_, ok = lit.Elems[1].(*Binary)
	assert.True(t, ok)
}

func TestParseDelete(t *testing.T) {
	cmd, err := ParseOne([]byte(`DELETE FROM coll WHERE a == 1`))
	require.NoError(t, err)
	del := cmd.(*DeleteCmd)
	assert.Equal(t, "coll", del.Collection)
}

func TestParseCreateDropCollection(t *testing.T) {
	cmd, err := ParseOne([]byte(`CREATE COLLECTION IF NOT EXISTS coll`))
	require.NoError(t, err)
	cc := cmd.(*CreateCollectionCmd)
	assert.True(t, cc.IfNotExists)

	cmd, err = ParseOne([]byte(`DROP COLLECTION IF EXISTS coll`))
	require.NoError(t, err)
	dc := cmd.(*DropCollectionCmd)
	assert.True(t, dc.IfExists)
}

func TestParseTxn(t *testing.T) {
	cmd, err := ParseOne([]byte(`BEGIN`))
	require.NoError(t, err)
	assert.Equal(t, TxnBegin, cmd.(*TxnCmd).Kind)
}

func TestParseExpressionPrecedence(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT a FROM x WHERE 1 + 2 * 3 == 7 && true`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	top, ok := sel.Query.Where.(*Binary)
	require.True(t, ok)
	assert.Equal(t, BinAnd, top.Op)
	eq, ok := top.Left.(*Binary)
	require.True(t, ok)
	assert.Equal(t, BinEq, eq.Op)
	add, ok := eq.Left.(*Binary)
	require.True(t, ok)
	assert.Equal(t, BinAdd, add.Op)
}

func TestParseBetween(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT a FROM x WHERE a BETWEEN 1 AND 10`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	b, ok := sel.Query.Where.(*Between)
	require.True(t, ok)
	assert.False(t, b.Not)
}

func TestParseTernaryAndFunctionCall(t *testing.T) {
	cmd, err := ParseOne([]byte(`SELECT count(*) FROM x WHERE len(a) > 0 ? true : false`))
	require.NoError(t, err)
	sel := cmd.(*SelectCmd)
	call := sel.Query.Columns[0].Expr.(*Call)
	assert.Equal(t, "count", call.Name)
	assert.True(t, call.Star)
	_, ok := sel.Query.Where.(*Cond)
	assert.True(t, ok)
}

func TestParseMultipleStatements(t *testing.T) {
	cmds, err := Parse([]byte(`SELECT a FROM x; SELECT b FROM y;`))
	require.NoError(t, err)
	assert.Len(t, cmds, 2)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseOne([]byte(`SELECT FROM`))
	assert.Error(t, err)
}
