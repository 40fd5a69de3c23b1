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

package xjd1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpen(t *testing.T) (*Context, *Conn) {
	t.Helper()
	ctx := NewContext()
	conn, err := ctx.Open(":memory:")
	require.NoError(t, err)
	return ctx, conn
}

func mustRunOnce(t *testing.T, conn *Conn, text string) {
	t.Helper()
	s, _, err := conn.Prepare(text)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Step()
	require.NoError(t, err)
}

func TestOpenPrepareStepSelect(t *testing.T) {
	ctx, conn := mustOpen(t)
	defer ctx.Close()

	mustRunOnce(t, conn, "CREATE COLLECTION people;")
	mustRunOnce(t, conn, `INSERT INTO people VALUE {"name":"Ada"};`)

	s, _, err := conn.Prepare("SELECT * FROM people;")
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, Row, res)
	assert.Contains(t, s.Value(), `"name":"Ada"`)

	res, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, Done, res)
}

func TestInsertValueUnquotedLabelsAndIndex(t *testing.T) {
	ctx, conn := mustOpen(t)
	defer ctx.Close()

	mustRunOnce(t, conn, "CREATE COLLECTION t;")
	mustRunOnce(t, conn, `INSERT INTO t VALUE {a:1,b:"x"};`)

	s, _, err := conn.Prepare("SELECT * FROM t;")
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, Row, res)
	assert.Contains(t, s.Value(), `"a":1`)
	assert.Contains(t, s.Value(), `"b":"x"`)
}

func TestPrepareReportsConsumedBytesForScript(t *testing.T) {
	ctx, conn := mustOpen(t)
	defer ctx.Close()

	text := "CREATE COLLECTION a; CREATE COLLECTION b;"
	s1, n1, err := conn.Prepare(text)
	require.NoError(t, err)
	_, err = s1.Step()
	require.NoError(t, err)
	s1.Close()

	s2, n2, err := conn.Prepare(text[n1:])
	require.NoError(t, err)
	_, err = s2.Step()
	require.NoError(t, err)
	s2.Close()
	assert.Greater(t, n2, 0)

	s3, _, err := conn.Prepare("SELECT * FROM b;")
	require.NoError(t, err)
	defer s3.Close()
	res, err := s3.Step()
	require.NoError(t, err)
	assert.Equal(t, Done, res)
}

func TestConnLastErrorTracksMostRecentFailure(t *testing.T) {
	ctx, conn := mustOpen(t)
	defer ctx.Close()

	assert.Nil(t, conn.LastError())

	_, _, err := conn.Prepare("SELECT FROM;")
	require.Error(t, err)
	assert.Equal(t, err, conn.LastError())
}

func TestConnConfigParserTrace(t *testing.T) {
	ctx, conn := mustOpen(t)
	defer ctx.Close()

	require.NoError(t, conn.Config("PARSERTRACE", true))
	require.Error(t, conn.Config("PARSERTRACE"))
	require.Error(t, conn.Config("NOSUCHKEY", true))
}

func TestCompleteDetectsTrailingSemicolon(t *testing.T) {
	assert.True(t, Complete("SELECT * FROM people;"))
	assert.False(t, Complete("SELECT * FROM people"))
	assert.True(t, Complete("SELECT * FROM people; -- trailing comment\n"))
	assert.False(t, Complete(""))
}
