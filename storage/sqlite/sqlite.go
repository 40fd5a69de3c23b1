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

// Package sqlite implements storage.Backend on top of database/sql and
// the pure-Go modernc.org/sqlite driver (no cgo, matching how
// sqldef-sqldef's database/sqlite3 adapter wraps a sql.DB). Every
// collection is one table `x TEXT` plus rowid, exactly the shape
// original_source/src/update.c's SQL literals assume.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/xjd1/xjd1/storage"
)

// Database is a storage.Backend backed by one *sql.DB. database/sql
// does not expose sqlite3_mprintf, so identifier quoting is done by
// hand in quoteIdent below; values are passed as bound parameters.
type Database struct {
	db *sql.DB
	tx *sql.Tx
}

// Open opens (creating if necessary) the sqlite database at path. Use
// ":memory:" for a transient in-process database.
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	db.SetMaxOpenConns(1) // sqlite: one writer at a time, matches the no-concurrency model
	return &Database{db: db}, nil
}

// execer is whichever of *sql.DB / *sql.Tx is currently live.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (d *Database) conn() execer {
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Database) CreateCollection(ctx context.Context, name string, ifNotExists bool) error {
	exists, err := d.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if ifNotExists {
			return nil
		}
		return errors.Errorf("collection %q already exists", name)
	}
	stmt := fmt.Sprintf(`CREATE TABLE %s (x TEXT NOT NULL)`, quoteIdent(name))
	_, err = d.conn().ExecContext(ctx, stmt)
	return errors.Wrap(err, "create collection")
}

func (d *Database) DropCollection(ctx context.Context, name string, ifExists bool) error {
	exists, err := d.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		if ifExists {
			return nil
		}
		return errors.Errorf("collection %q does not exist", name)
	}
	stmt := fmt.Sprintf(`DROP TABLE %s`, quoteIdent(name))
	_, err = d.conn().ExecContext(ctx, stmt)
	return errors.Wrap(err, "drop collection")
}

func (d *Database) CollectionExists(ctx context.Context, name string) (bool, error) {
	const q = `SELECT 1 FROM sqlite_master WHERE type='table' AND name=?`
	rows, err := d.conn().QueryContext(ctx, q, name)
	if err != nil {
		return false, errors.Wrap(err, "check collection existence")
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

func (d *Database) Scan(ctx context.Context, name string) (storage.Cursor, error) {
	stmt := fmt.Sprintf(`SELECT rowid, x FROM %s ORDER BY rowid`, quoteIdent(name))
	rows, err := d.conn().QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrap(err, "scan collection")
	}
	return &cursor{rows: rows}, nil
}

func (d *Database) Insert(ctx context.Context, name string, json string) (int64, error) {
	stmt := fmt.Sprintf(`INSERT INTO %s (x) VALUES (?)`, quoteIdent(name))
	res, err := d.conn().ExecContext(ctx, stmt, json)
	if err != nil {
		return 0, errors.Wrap(err, "insert row")
	}
	id, err := res.LastInsertId()
	return id, errors.Wrap(err, "read inserted rowid")
}

func (d *Database) UpdateRow(ctx context.Context, name string, rowid int64, json string) error {
	stmt := fmt.Sprintf(`UPDATE %s SET x=? WHERE rowid=?`, quoteIdent(name))
	_, err := d.conn().ExecContext(ctx, stmt, json, rowid)
	return errors.Wrap(err, "update row")
}

func (d *Database) DeleteRow(ctx context.Context, name string, rowid int64) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE rowid=?`, quoteIdent(name))
	_, err := d.conn().ExecContext(ctx, stmt, rowid)
	return errors.Wrap(err, "delete row")
}

func (d *Database) Begin(ctx context.Context) error {
	if d.tx != nil {
		return errors.New("a transaction is already active")
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	d.tx = tx
	return nil
}

func (d *Database) Commit(ctx context.Context) error {
	if d.tx == nil {
		return errors.New("no transaction is active")
	}
	err := d.tx.Commit()
	d.tx = nil
	return errors.Wrap(err, "commit transaction")
}

func (d *Database) Rollback(ctx context.Context) error {
	if d.tx == nil {
		return errors.New("no transaction is active")
	}
	err := d.tx.Rollback()
	d.tx = nil
	return errors.Wrap(err, "rollback transaction")
}

func (d *Database) Close() error {
	return d.db.Close()
}

// cursor adapts *sql.Rows to storage.Cursor.
type cursor struct {
	rows *sql.Rows
}

func (c *cursor) Next(ctx context.Context) (storage.Row, bool, error) {
	if !c.rows.Next() {
		return storage.Row{}, false, c.rows.Err()
	}
	var r storage.Row
	if err := c.rows.Scan(&r.RowID, &r.JSON); err != nil {
		return storage.Row{}, false, errors.Wrap(err, "scan row")
	}
	return r, true, nil
}

func (c *cursor) Close() error {
	return c.rows.Close()
}
