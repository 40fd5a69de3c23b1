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

// Package storage defines the relational backend contract xjd1 stores
// its JSON documents through: one table per collection, a single `x
// TEXT` column holding the canonical JSON rendering of each document,
// plus the table's implicit rowid as the document's stable identity.
// Grounded on the kv/kvs package shape (a narrow Get/Put/Del surface
// the rest of the engine drives), adapted from a raw byte-oriented KV
// contract to the row-oriented shape a SQL table naturally offers.
package storage

import "context"

// Row is one stored document: its rowid plus its canonical JSON text.
type Row struct {
	RowID int64
	JSON  string
}

// Cursor iterates the rows of a collection scan or an ad-hoc query
// issued by a storage.Backend. Callers must call Close once done.
type Cursor interface {
	Next(ctx context.Context) (Row, bool, error)
	Close() error
}

// Backend is the storage contract the stmt/exec layers drive. A
// Backend owns exactly one physical database (one file, or memory);
// xjd1.Context wraps exactly one Backend.
type Backend interface {
	// CreateCollection creates the backing table for name. If
	// ifNotExists is true, an existing table is not an error.
	CreateCollection(ctx context.Context, name string, ifNotExists bool) error

	// DropCollection drops the backing table for name. If ifExists is
	// true, a missing table is not an error.
	DropCollection(ctx context.Context, name string, ifExists bool) error

	// CollectionExists reports whether name has a backing table.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Scan opens a cursor over every row of name, in rowid order.
	Scan(ctx context.Context, name string) (Cursor, error)

	// Insert appends one document to name, returning its new rowid.
	Insert(ctx context.Context, name string, json string) (int64, error)

	// UpdateRow overwrites the JSON text stored at rowid.
	UpdateRow(ctx context.Context, name string, rowid int64, json string) error

	// DeleteRow removes the row at rowid.
	DeleteRow(ctx context.Context, name string, rowid int64) error

	// Begin starts a transaction; Commit/Rollback end it. Nested
	// Begin calls between a Begin and its matching end are an error,
	// matching spec.md's single-active-transaction rule.
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Close releases the underlying connection/handle.
	Close() error
}
