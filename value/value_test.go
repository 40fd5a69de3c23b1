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

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRoundTrip(t *testing.T) {
	cases := []string{
		`null`, `true`, `false`, `1`, `-3.5`, `"hi"`, `"a\"b"`,
		`[]`, `{}`, `[1,2,3]`, `{"a":1,"b":[1,2]}`,
	}
	for _, src := range cases {
		v, err := Parse([]byte(src))
		require.NoError(t, err, src)
		out := RenderString(v)
		v2, err := Parse([]byte(out))
		require.NoError(t, err, out)
		assert.Equal(t, 0, Compare(v, v2), "round-trip mismatch for %s -> %s", src, out)
	}
}

func TestParseEmptyContainersCanonical(t *testing.T) {
	arr, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "[]", RenderString(arr))

	obj, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "{}", RenderString(obj))
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, err := Parse([]byte(`1 2`))
	assert.Error(t, err)
}

func TestParseUnterminatedExponentFails(t *testing.T) {
	_, err := Parse([]byte(`1e`))
	assert.Error(t, err)
}

func TestCompareTagOrdinal(t *testing.T) {
	assert.True(t, Compare(False(), True()) < 0)
	assert.True(t, Compare(True(), Real(0)) < 0)
	assert.True(t, Compare(Real(100), Null()) < 0)
	assert.True(t, Compare(Null(), Str("")) < 0)
	assert.True(t, Compare(Str("z"), Array()) < 0)
	assert.True(t, Compare(Array(), Struct()) < 0)
}

func TestCompareArrayShorterIsLess(t *testing.T) {
	a := Array(Real(1), Real(2))
	b := Array(Real(1), Real(2), Real(3))
	assert.True(t, Compare(a, b) < 0)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Null()))
	assert.False(t, Truthy(False()))
	assert.False(t, Truthy(Real(0)))
	assert.False(t, Truthy(Str("")))
	assert.True(t, Truthy(Str("x")))
	assert.True(t, Truthy(Real(0.5)))
	assert.True(t, Truthy(Array()))
	assert.True(t, Truthy(Struct()))
}

func TestToReal(t *testing.T) {
	f, ok := ToReal(True())
	assert.True(t, ok)
	assert.Equal(t, float64(1), f)

	f, ok = ToReal(False())
	assert.True(t, ok)
	assert.Equal(t, float64(0), f)

	f, ok = ToReal(Str("42"))
	assert.True(t, ok)
	assert.Equal(t, float64(42), f)

	_, ok = ToReal(Str(" 42"))
	assert.False(t, ok)

	_, ok = ToReal(Str("42 garbage"))
	assert.False(t, ok)

	_, ok = ToReal(Null())
	assert.False(t, ok)
}

func TestRefcountEditClonesWhenShared(t *testing.T) {
	base := Array(Real(1))
	shared := Ref(base)

	edited := Edit(base)
	assert.NotSame(t, base, edited)

	Append(edited, Real(2))
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, edited.Len())

	Free(shared)
	Free(base)
	Free(edited)
}

func TestRefcountEditInPlaceWhenUnique(t *testing.T) {
	base := Array(Real(1))
	edited := Edit(base)
	assert.Same(t, base, edited)
	Free(edited)
}

func TestArenaFreeIsNoOp(t *testing.T) {
	v := Arena(Real(5))
	Free(v)
	Free(v)
	assert.Equal(t, float64(5), v.Real())
}

func TestStructFirstMatchWins(t *testing.T) {
	s := Struct()
	Insert(s, "a", Real(1))
	Insert(s, "a", Real(2))
	assert.Equal(t, float64(1), s.Field("a").Real())
}
