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

// Package xjd1 is the public embedding surface: a host program creates
// one Context, opens one or more Conn against it, and drives Stmt
// objects through Prepare/Step/Rewind/Close. Grounded on db/db.go's
// top-level Context/DB/Txn handle family, narrowed from surrealdb's
// multi-namespace/multi-database tree down to one backend per Conn.
package xjd1

import (
	"sync"

	"github.com/xjd1/xjd1/cnf"
	"github.com/xjd1/xjd1/log"
)

// Context is the top-level handle a host program keeps for the
// lifetime of the process (or however long it wants xjd1 available).
// It carries no state of its own beyond bookkeeping the Conns it has
// opened, so they can be closed together.
type Context struct {
	mu    sync.Mutex
	conns []*Conn
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// NewContext returns a ready-to-use Context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogging applies the logging level, output, and format carried in
// opts to the package-wide logger before the Context is returned. A
// zero value for any field leaves that setting at the logger's default.
func WithLogging(opts cnf.Options) ContextOption {
	return func(c *Context) {
		if opts.Logging.Level != "" {
			log.SetLevel(opts.Logging.Level)
		}
		if opts.Logging.Output != "" {
			log.SetOutput(opts.Logging.Output)
		}
		if opts.Logging.Format != "" {
			log.SetFormat(opts.Logging.Format)
		}
	}
}

// Open opens a Conn against the sqlite database named by uri (a file
// path, or ":memory:" for a transient in-process database).
func (c *Context) Open(uri string) (*Conn, error) {
	conn, err := newConn(uri)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

// Close closes every Conn opened through this Context.
func (c *Context) Close() error {
	c.mu.Lock()
	conns := c.conns
	c.conns = nil
	c.mu.Unlock()

	var first error
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Errorf("closing connection: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
