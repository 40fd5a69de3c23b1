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

// Package lex implements the byte-level tokenizer: a stream of token
// kinds plus (offset, length) spans, with a case-sensitive keyword table.
package lex

// Token identifies the kind of a scanned lexeme.
type Token int16

const (
	ILLEGAL Token = iota
	EOF
	SPACE

	// literals

	IDENT  // column, collection, alias names
	NUMBER // 123, 123.45, 1e10
	STRING // "quoted"

	// punctuation

	DOT       // .
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACK    // [
	RBRACK    // ]
	LBRACE    // {
	RBRACE    // }
	SEMICOLON // ;
	QMARK     // ?
	COLON     // :

	// operators

	ADD // +
	SUB // -
	MUL // *
	DIV // /
	MOD // %

	EQ  // ==
	NE  // !=
	LT  // <
	LE  // <=
	GT  // >
	GE  // >=

	BANG   // !
	AND    // &&
	OR     // ||
	BITAND // &
	BITOR  // |
	SHL    // <<
	SHR    // >>
	TILDE  // ~

	keywordsBeg

	SELECT
	FROM
	WHERE
	GROUP
	HAVING
	ORDER
	BY
	ASC
	DESC
	LIMIT
	OFFSET
	DISTINCT
	AS
	FLATTEN
	EACH
	UNION
	EXCEPT
	INTERSECT
	ALL
	INSERT
	INTO
	VALUE
	DELETE
	UPDATE
	SET
	ELSE
	CREATE
	COLLECTION
	DROP
	IF
	NOT
	EXISTS
	BEGIN
	COMMIT
	ROLLBACK
	PRAGMA
	TRUE
	FALSE
	NULL
	LIKE
	IN
	BETWEEN

	keywordsEnd
)

var keywords = map[string]Token{
	"SELECT":     SELECT,
	"FROM":       FROM,
	"WHERE":      WHERE,
	"GROUP":      GROUP,
	"HAVING":     HAVING,
	"ORDER":      ORDER,
	"BY":         BY,
	"ASC":        ASC,
	"DESC":       DESC,
	"LIMIT":      LIMIT,
	"OFFSET":     OFFSET,
	"DISTINCT":   DISTINCT,
	"AS":         AS,
	"FLATTEN":    FLATTEN,
	"EACH":       EACH,
	"UNION":      UNION,
	"EXCEPT":     EXCEPT,
	"INTERSECT":  INTERSECT,
	"ALL":        ALL,
	"INSERT":     INSERT,
	"INTO":       INTO,
	"VALUE":      VALUE,
	"DELETE":     DELETE,
	"UPDATE":     UPDATE,
	"SET":        SET,
	"ELSE":       ELSE,
	"CREATE":     CREATE,
	"COLLECTION": COLLECTION,
	"DROP":       DROP,
	"IF":         IF,
	"NOT":        NOT,
	"EXISTS":     EXISTS,
	"BEGIN":      BEGIN,
	"COMMIT":     COMMIT,
	"ROLLBACK":   ROLLBACK,
	"PRAGMA":     PRAGMA,
	"TRUE":       TRUE,
	"FALSE":      FALSE,
	"NULL":       NULL,
	"LIKE":       LIKE,
	"IN":         IN,
	"BETWEEN":    BETWEEN,
}

// Lookup returns the keyword token for a case-sensitive identifier match,
// or IDENT if word is not one of the reserved words. Go's builtin map
// stands in for the C source's generated perfect-hash table
// (tool/mkkeywordhash.c); a map lookup is O(1) expected time and the
// keyword set is small and fixed, so there is no practical reason to hand
// generate a minimal perfect hash here -- documented in SPEC_FULL.md §4.1 as the
// one place this implementation deliberately does not mirror the C
// source's approach.
func Lookup(word string) Token {
	if tok, ok := keywords[word]; ok {
		return tok
	}
	return IDENT
}

// String names a token for diagnostics.
func (t Token) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "ILLEGAL"
}

var tokenNames = map[Token]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", SPACE: "SPACE",
	IDENT: "IDENT", NUMBER: "NUMBER", STRING: "STRING",
	DOT: ".", COMMA: ",", LPAREN: "(", RPAREN: ")", LBRACK: "[", RBRACK: "]",
	LBRACE: "{", RBRACE: "}",
	SEMICOLON: ";", QMARK: "?", COLON: ":",
	ADD: "+", SUB: "-", MUL: "*", DIV: "/", MOD: "%",
	EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	BANG: "!", AND: "&&", OR: "||", BITAND: "&", BITOR: "|",
	SHL: "<<", SHR: ">>", TILDE: "~",
}

func init() {
	for word, tok := range keywords {
		tokenNames[tok] = word
	}
}
