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
	"sync"

	"github.com/pkg/errors"

	"github.com/xjd1/xjd1/log"
	"github.com/xjd1/xjd1/stmt"
	"github.com/xjd1/xjd1/storage"
	"github.com/xjd1/xjd1/storage/sqlite"
	"github.com/xjd1/xjd1/value"
)

// Conn is one open connection to a sqlite-backed document store. A Conn
// is not safe for concurrent use by multiple goroutines, matching
// spec.md §5's single-threaded stepping contract.
type Conn struct {
	mu      sync.Mutex
	backend storage.Backend
	trace   bool
	lastErr error
}

func newConn(uri string) (*Conn, error) {
	db, err := sqlite.Open(uri)
	if err != nil {
		return nil, errors.Wrap(err, "open connection")
	}
	return &Conn{backend: db}, nil
}

// Close releases the underlying backend handle. A Conn must not be
// used again after Close.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Close()
}

// Config sets a connection-level debug knob. The only recognized key
// today is "PARSERTRACE", mirroring the PRAGMA of the same name
// (spec.md §6): a single bool argument enables or disables logging
// each prepared statement's DebugListing at Debug level.
func (c *Conn) Config(key string, args ...interface{}) error {
	switch key {
	case "PARSERTRACE":
		if len(args) != 1 {
			return errors.Errorf("PARSERTRACE takes exactly one bool argument")
		}
		on, ok := args[0].(bool)
		if !ok {
			return errors.Errorf("PARSERTRACE argument must be a bool")
		}
		c.mu.Lock()
		c.trace = on
		c.mu.Unlock()
		return nil
	default:
		return errors.Errorf("unknown config key %q", key)
	}
}

// Prepare parses the first statement out of text, binding params to
// its `?` placeholders positionally, and returns it as a ready-to-step
// Stmt plus the number of leading bytes of text it consumed (so a
// caller feeding a whole script can advance past it and Prepare again).
func (c *Conn) Prepare(text string, params ...*value.Value) (*Stmt, int, error) {
	inner, consumed, err := stmt.New(c.backend, text, params...)
	if err != nil {
		c.setLastErr(err)
		return nil, 0, err
	}
	c.mu.Lock()
	trace := c.trace
	c.mu.Unlock()
	if trace {
		log.Debugf("xjd1 parsed statement:\n%s", inner.DebugListing())
	}
	return &Stmt{conn: c, inner: inner}, consumed, nil
}

// LastError returns the most recent error raised by a Prepare, Step,
// Rewind or Close call on this Conn, mirroring the C API's connection-level errmsg
// slot (spec.md §6). It is nil until the first error occurs.
func (c *Conn) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Conn) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}
