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

package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/value"
)

func seed(t *testing.T, b *memBackend, coll string, docs ...string) {
	t.Helper()
	require.NoError(t, b.CreateCollection(context.Background(), coll, false))
	for _, d := range docs {
		_, err := b.Insert(context.Background(), coll, d)
		require.NoError(t, err)
	}
}

func runSelect(t *testing.T, b *memBackend, src string) []*value.Value {
	t.Helper()
	cmd, err := parse.ParseOne([]byte(src))
	require.NoError(t, err)
	sel := cmd.(*parse.SelectCmd)
	ex := New(b, nil)
	rows, err := ex.Run(context.Background(), sel.Query)
	require.NoError(t, err)
	return rows
}

func TestExecWhereFilter(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "people", `{"name":"a","age":10}`, `{"name":"b","age":20}`, `{"name":"c","age":30}`)
	rows := runSelect(t, b, `SELECT name FROM people WHERE age > 15`)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Field("name").RawString())
	assert.Equal(t, "c", rows[1].Field("name").RawString())
}

func TestExecOrderByDesc(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "people", `{"age":10}`, `{"age":30}`, `{"age":20}`)
	rows := runSelect(t, b, `SELECT age FROM people ORDER BY age DESC`)
	require.Len(t, rows, 3)
	assert.Equal(t, float64(30), rows[0].Field("age").Real())
	assert.Equal(t, float64(20), rows[1].Field("age").Real())
	assert.Equal(t, float64(10), rows[2].Field("age").Real())
}

func TestExecLimitOffset(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "people", `{"age":1}`, `{"age":2}`, `{"age":3}`, `{"age":4}`)
	rows := runSelect(t, b, `SELECT age FROM people ORDER BY age LIMIT 2 OFFSET 1`)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(2), rows[0].Field("age").Real())
	assert.Equal(t, float64(3), rows[1].Field("age").Real())
}

func TestExecGroupByAggregate(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "orders",
		`{"customer":"a","total":10}`,
		`{"customer":"a","total":5}`,
		`{"customer":"b","total":7}`,
	)
	rows := runSelect(t, b, `SELECT customer, sum(total) AS total FROM orders GROUP BY customer ORDER BY customer`)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Field("customer").RawString())
	assert.Equal(t, float64(15), rows[0].Field("total").Real())
	assert.Equal(t, "b", rows[1].Field("customer").RawString())
	assert.Equal(t, float64(7), rows[1].Field("total").Real())
}

func TestExecHavingFiltersGroups(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "orders",
		`{"customer":"a","total":10}`,
		`{"customer":"a","total":5}`,
		`{"customer":"b","total":7}`,
	)
	rows := runSelect(t, b, `SELECT customer FROM orders GROUP BY customer HAVING count(*) > 1`)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Field("customer").RawString())
}

func TestExecDistinct(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "people", `{"age":1}`, `{"age":1}`, `{"age":2}`)
	rows := runSelect(t, b, `SELECT DISTINCT age FROM people ORDER BY age`)
	require.Len(t, rows, 2)
}

func TestExecCompoundUnion(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "x", `{"a":1}`)
	seed(t, b, "y", `{"a":1}`, `{"a":2}`)
	rows := runSelect(t, b, `SELECT a FROM x UNION SELECT a FROM y`)
	assert.Len(t, rows, 2)
}

func TestExecCompoundUnionAllKeepsDuplicates(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "x", `{"a":1}`)
	seed(t, b, "y", `{"a":1}`)
	rows := runSelect(t, b, `SELECT a FROM x UNION ALL SELECT a FROM y`)
	assert.Len(t, rows, 2)
}

func TestExecJoinCrossProduct(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "x", `{"v":1}`, `{"v":2}`)
	seed(t, b, "y", `{"v":10}`, `{"v":20}`, `{"v":30}`)
	rows := runSelect(t, b, `SELECT * FROM x, y`)
	assert.Len(t, rows, 6)
}

func TestExecFlattenArray(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "t", `{"b":["x","y","z"]}`, `{"b":[]}`)
	rows := runSelect(t, b, `SELECT x.v FROM t FLATTEN(t.b) AS x`)
	require.Len(t, rows, 3)
	assert.Equal(t, "x", rows[0].Field("v").RawString())
	assert.Equal(t, "y", rows[1].Field("v").RawString())
	assert.Equal(t, "z", rows[2].Field("v").RawString())
}

func TestExecFlattenKeyIsIndexOrLabel(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "t", `{"b":["x","y"]}`)
	rows := runSelect(t, b, `SELECT x.k, x.v FROM t FLATTEN(t.b) AS x`)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(0), rows[0].Field("k").Real())
	assert.Equal(t, float64(1), rows[1].Field("k").Real())

	b2 := newMemBackend()
	seed(t, b2, "t", `{"b":{"p":1,"q":2}}`)
	rows2 := runSelect(t, b2, `SELECT x.k, x.v FROM t EACH(t.b) AS x`)
	require.Len(t, rows2, 2)
	assert.ElementsMatch(t, []string{"p", "q"}, []string{rows2[0].Field("k").RawString(), rows2[1].Field("k").RawString()})
}

func TestExecFromlessSelect(t *testing.T) {
	b := newMemBackend()
	rows := runSelect(t, b, `SELECT 1 + 2 AS total`)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(3), rows[0].Field("total").Real())
}

func TestExecSubqueryAsScalar(t *testing.T) {
	b := newMemBackend()
	seed(t, b, "x", `{"v":1}`)
	seed(t, b, "y", `{"v":99}`)
	rows := runSelect(t, b, `SELECT (SELECT v FROM y) AS sub FROM x`)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(99), rows[0].Field("sub").Real())
}
