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

package stmt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xjd1/xjd1/parse"
)

func mustNew(t *testing.T, b *memBackend, text string) *Stmt {
	t.Helper()
	s, _, err := New(b, text)
	require.NoError(t, err)
	return s
}

func collectRows(t *testing.T, s *Stmt, ctx context.Context) []string {
	t.Helper()
	var out []string
	for {
		res, err := s.Step(ctx)
		require.NoError(t, err)
		if res == Done {
			break
		}
		out = append(out, s.Value())
	}
	return out
}

func TestCreateAndDropCollection(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()

	s := mustNew(t, b, "CREATE COLLECTION people;")
	res, err := s.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, Done, res)
	ok, err := b.CollectionExists(ctx, "people")
	require.NoError(t, err)
	assert.True(t, ok)
	s.Close()

	s = mustNew(t, b, "DROP COLLECTION people;")
	_, err = s.Step(ctx)
	require.NoError(t, err)
	ok, err = b.CollectionExists(ctx, "people")
	require.NoError(t, err)
	assert.False(t, ok)
	s.Close()
}

func TestInsertValueAndSelect(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))

	s := mustNew(t, b, `INSERT INTO people VALUE {"name":"Ada","age":30};`)
	_, err := s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"name":"Ada"`)
}

func TestInsertValueUnquotedLabels(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))

	s := mustNew(t, b, `INSERT INTO people VALUE {a:1,b:"x"};`)
	_, err := s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"a":1`)
	assert.Contains(t, rows[0], `"b":"x"`)
}

func TestSelectStepsOneRowAtATimeAndRewinds(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "nums", false))
	for _, v := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		_, err := b.Insert(ctx, "nums", v)
		require.NoError(t, err)
	}

	s := mustNew(t, b, "SELECT * FROM nums ORDER BY n;")
	defer s.Close()

	first := collectRows(t, s, ctx)
	require.Len(t, first, 3)

	require.NoError(t, s.Rewind())
	second := collectRows(t, s, ctx)
	assert.Equal(t, first, second)
}

func TestUpdateSetsTopLevelAndNestedFields(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))
	_, err := b.Insert(ctx, "people", `{"name":"Ada","address":{"city":"London"}}`)
	require.NoError(t, err)

	s := mustNew(t, b, `UPDATE people SET name = "Grace", address.city = "Boston";`)
	_, err = s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"name":"Grace"`)
	assert.Contains(t, rows[0], `"city":"Boston"`)
}

func TestUpdateCreatesMissingIntermediateStruct(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))
	_, err := b.Insert(ctx, "people", `{"name":"Ada"}`)
	require.NoError(t, err)

	s := mustNew(t, b, `UPDATE people SET meta.tag = "vip";`)
	_, err = s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"tag":"vip"`)
}

func TestUpdateElseInsertUpsertsWhenNoRowsMatch(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))

	s := mustNew(t, b, `UPDATE people SET name = "Ada" WHERE name = "Ada" ELSE INSERT {"name":"Ada","age":36};`)
	_, err := s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"age":36`)
}

func TestUpdateElseInsertSkippedWhenRowsMatch(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))
	_, err := b.Insert(ctx, "people", `{"name":"Ada","age":30}`)
	require.NoError(t, err)

	s := mustNew(t, b, `UPDATE people SET age = 31 WHERE name = "Ada" ELSE INSERT {"name":"Ada","age":1};`)
	_, err = s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"age":31`)
}

func TestDeleteRemovesMatchingRows(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))
	_, err := b.Insert(ctx, "people", `{"name":"Ada"}`)
	require.NoError(t, err)
	_, err = b.Insert(ctx, "people", `{"name":"Grace"}`)
	require.NoError(t, err)

	s := mustNew(t, b, `DELETE FROM people WHERE name = "Ada";`)
	_, err = s.Step(ctx)
	require.NoError(t, err)
	s.Close()

	s = mustNew(t, b, "SELECT * FROM people;")
	rows := collectRows(t, s, ctx)
	s.Close()

	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], `"Grace"`)
}

func TestTxnCommandsDelegateToBackend(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()

	s := mustNew(t, b, "BEGIN;")
	_, err := s.Step(ctx)
	require.NoError(t, err)
	s.Close()
	assert.True(t, b.inTxn)

	s = mustNew(t, b, "COMMIT;")
	_, err = s.Step(ctx)
	require.NoError(t, err)
	s.Close()
	assert.False(t, b.inTxn)
}

func TestPragmaParserTraceNoOps(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()

	s := mustNew(t, b, "PRAGMA PARSERTRACE = true;")
	res, err := s.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, Done, res)
	s.Close()
}

func TestPragmaUnknownIsSemanticError(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()

	s := mustNew(t, b, "PRAGMA NOSUCHTHING = true;")
	_, err := s.Step(ctx)
	require.Error(t, err)
	s.Close()
}

func TestParseFirstReportsConsumedBytes(t *testing.T) {
	text := "CREATE COLLECTION a; CREATE COLLECTION b;"
	cmd, n, err := parse.ParseFirst([]byte(text))
	require.NoError(t, err)
	require.IsType(t, &parse.CreateCollectionCmd{}, cmd)
	assert.Equal(t, "a", cmd.(*parse.CreateCollectionCmd).Collection)

	cmd2, n2, err := parse.ParseFirst([]byte(text[n:]))
	require.NoError(t, err)
	assert.Equal(t, "b", cmd2.(*parse.CreateCollectionCmd).Collection)
	assert.Greater(t, n2, 0)
}

func TestDebugListingRendersSelect(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	require.NoError(t, b.CreateCollection(ctx, "people", false))

	s := mustNew(t, b, "SELECT * FROM people WHERE name = \"Ada\";")
	defer s.Close()

	out := s.DebugListing()
	assert.Contains(t, out, "Select")
	assert.Contains(t, out, "Collection name=people")
	assert.Contains(t, out, "Where")
}
