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

// Package xerr defines the typed error kinds xjd1 surfaces to callers,
// grounded on sql/error.go and db/error.go's one-struct-per-kind
// convention, narrowed to four failure classes: a malformed statement
// (ParseError), a statement that is syntactically fine but cannot be
// evaluated (SemanticError), a failure originating in the storage
// backend (BackendError), and an exceeded size limit (ResourceError).
package xerr

import "github.com/pkg/errors"

// ParseError reports a syntax error encountered while parsing a
// statement.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error at offset " + itoa(e.Offset) + ": " + e.Reason
}

// SemanticError reports a statement that parsed but cannot run: an
// unknown function, an aggregate used outside a grouped context, a
// parameter index out of range, an invalid UPDATE assignment target,
// an unknown pragma, or a subquery that yielded more than one row
// where a scalar was required.
type SemanticError struct {
	Reason string
}

func (e *SemanticError) Error() string {
	return e.Reason
}

// BackendError wraps a failure returned by the storage layer, keeping
// the underlying error available via Unwrap/errors.Cause.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ResourceError reports that satisfying an allocation would exceed a
// configured resource cap (the NOMEM equivalent).
type ResourceError struct {
	Reason string
}

func (e *ResourceError) Error() string {
	return "resource error: " + e.Reason
}

// Wrap annotates err as having occurred during op, leaving nil errors
// as nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: errors.WithStack(err)}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
