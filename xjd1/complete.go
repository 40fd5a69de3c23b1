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

import "github.com/xjd1/xjd1/lex"

// Complete reports whether text ends with a complete statement: a
// lexical check only (mirroring sqlite3_complete), not a parse, so a
// REPL-style host can decide whether to keep reading more input before
// calling Conn.Prepare. It is satisfied by any text whose last
// non-whitespace, non-comment token is a terminating ';'.
func Complete(text string) bool {
	s := lex.New([]byte(text))
	sawSemicolon := false
	for {
		tok, _, _ := s.Scan()
		switch tok {
		case lex.EOF:
			return sawSemicolon
		case lex.SPACE:
			continue
		case lex.SEMICOLON:
			sawSemicolon = true
		default:
			sawSemicolon = false
		}
	}
}
