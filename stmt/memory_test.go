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
	"sort"

	"github.com/pkg/errors"

	"github.com/xjd1/xjd1/storage"
)

// memBackend is a minimal in-memory storage.Backend for this package's
// tests, mirroring exec's own memBackend test double (the two packages
// can't share one across a package boundary without exporting a test
// helper neither needs outside its own tests).
type memBackend struct {
	tables map[string]map[int64]string
	nextID int64
	inTxn  bool
}

func newMemBackend() *memBackend {
	return &memBackend{tables: map[string]map[int64]string{}}
}

func (m *memBackend) CreateCollection(ctx context.Context, name string, ifNotExists bool) error {
	if _, ok := m.tables[name]; ok {
		if ifNotExists {
			return nil
		}
		return errors.Errorf("collection %q already exists", name)
	}
	m.tables[name] = map[int64]string{}
	return nil
}

func (m *memBackend) DropCollection(ctx context.Context, name string, ifExists bool) error {
	if _, ok := m.tables[name]; !ok {
		if ifExists {
			return nil
		}
		return errors.Errorf("collection %q does not exist", name)
	}
	delete(m.tables, name)
	return nil
}

func (m *memBackend) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, ok := m.tables[name]
	return ok, nil
}

func (m *memBackend) Scan(ctx context.Context, name string) (storage.Cursor, error) {
	tbl, ok := m.tables[name]
	if !ok {
		return nil, errors.Errorf("collection %q does not exist", name)
	}
	ids := make([]int64, 0, len(tbl))
	for id := range tbl {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rows := make([]storage.Row, len(ids))
	for i, id := range ids {
		rows[i] = storage.Row{RowID: id, JSON: tbl[id]}
	}
	return &memCursor{rows: rows}, nil
}

func (m *memBackend) Insert(ctx context.Context, name string, json string) (int64, error) {
	tbl, ok := m.tables[name]
	if !ok {
		return 0, errors.Errorf("collection %q does not exist", name)
	}
	m.nextID++
	tbl[m.nextID] = json
	return m.nextID, nil
}

func (m *memBackend) UpdateRow(ctx context.Context, name string, rowid int64, json string) error {
	tbl, ok := m.tables[name]
	if !ok {
		return errors.Errorf("collection %q does not exist", name)
	}
	tbl[rowid] = json
	return nil
}

func (m *memBackend) DeleteRow(ctx context.Context, name string, rowid int64) error {
	tbl, ok := m.tables[name]
	if !ok {
		return errors.Errorf("collection %q does not exist", name)
	}
	delete(tbl, rowid)
	return nil
}

func (m *memBackend) Begin(ctx context.Context) error {
	if m.inTxn {
		return errors.New("transaction already in progress")
	}
	m.inTxn = true
	return nil
}

func (m *memBackend) Commit(ctx context.Context) error {
	m.inTxn = false
	return nil
}

func (m *memBackend) Rollback(ctx context.Context) error {
	m.inTxn = false
	return nil
}

func (m *memBackend) Close() error { return nil }

type memCursor struct {
	rows []storage.Row
	pos  int
}

func (c *memCursor) Next(ctx context.Context) (storage.Row, bool, error) {
	if c.pos >= len(c.rows) {
		return storage.Row{}, false, nil
	}
	r := c.rows[c.pos]
	c.pos++
	return r, true, nil
}

func (c *memCursor) Close() error { return nil }
