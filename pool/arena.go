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

// Package pool implements a bump-allocating arena used to hold the AST
// nodes and parse strings belonging to a single prepared statement.
package pool

import (
	"sync"

	"github.com/xjd1/xjd1/xerr"
)

// chunkSize is the size of each backing buffer handed out by the arena.
// Allocations larger than this bypass the chunk and get their own slice.
const chunkSize = 4096

// Arena is a bump allocator with one-shot reset. Every byte slice and
// string it hands out is only valid for the lifetime of the arena; there
// is no way to free an individual allocation.
type Arena struct {
	chunks [][]byte
	cur    []byte
	nodes  []interface{}
	limit  int
	used   int
}

var arenaPool = sync.Pool{
	New: func() interface{} { return &Arena{} },
}

// New takes an Arena from the shared pool, ready for use.
func New() *Arena {
	return arenaPool.Get().(*Arena)
}

// Reset clears the arena in O(1), returning its backing chunks to the pool
// so the next statement reuses the allocation. Nothing placed in the arena
// is individually freed; this is the only release mechanism.
func (a *Arena) Reset() {
	a.chunks = a.chunks[:0]
	a.cur = nil
	a.nodes = a.nodes[:0]
	a.limit = 0
	a.used = 0
	arenaPool.Put(a)
}

// SetLimit caps the arena's total checked allocation (see BytesChecked)
// at n bytes; a zero limit (the default) leaves it uncapped. Unchecked
// Bytes/String calls never consult the limit.
func (a *Arena) SetLimit(n int) { a.limit = n }

// BytesChecked is like Bytes, but fails with an *xerr.ResourceError
// instead of growing the arena once the configured limit would be
// exceeded -- the NOMEM equivalent for the one arena a statement owns.
func (a *Arena) BytesChecked(n int) ([]byte, error) {
	if a.limit > 0 && a.used+n > a.limit {
		return nil, &xerr.ResourceError{Reason: "statement arena exceeded its configured size limit"}
	}
	b := a.Bytes(n)
	a.used += n
	return b, nil
}

// StringChecked copies s into arena-owned storage via BytesChecked.
func (a *Arena) StringChecked(s string) (string, error) {
	b, err := a.BytesChecked(len(s))
	if err != nil {
		return "", err
	}
	copy(b, s)
	return string(b), nil
}

// Bytes returns a zeroed byte slice of length n carved out of the arena.
func (a *Arena) Bytes(n int) []byte {
	if n > chunkSize {
		b := make([]byte, n)
		a.chunks = append(a.chunks, b)
		return b
	}
	if len(a.cur) < n {
		a.cur = make([]byte, chunkSize)
		a.chunks = append(a.chunks, a.cur)
	}
	b := a.cur[:n:n]
	a.cur = a.cur[n:]
	return b
}

// String copies s into arena-owned storage and returns the copy.
func (a *Arena) String(s string) string {
	b := a.Bytes(len(s))
	copy(b, s)
	return string(b)
}

// Keep records a node so the arena holds a reference to it for its
// lifetime. AST nodes that carry no buffers of their own (most of them,
// since they only point at other arena nodes) do not strictly need this,
// but Command/Query roots are kept so a host can't be handed a dangling
// arena-owned tree after Reset.
func (a *Arena) Keep(node interface{}) {
	a.nodes = append(a.nodes, node)
}
