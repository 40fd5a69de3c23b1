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

// Package parse turns token text into the AST the rest of xjd1 runs
// against: Command at the top, Query and DataSrc beneath SELECT, Expr
// everywhere a value is computed. Grounded on sql/ast.go's statement
// struct family, generalized from surrealdb's record/table model down
// to xjd1's single-collection-per-FROM-term model.
package parse

import "github.com/xjd1/xjd1/value"

// Command is the sum type of everything xjd1 can execute as one
// statement: SELECT, INSERT, UPDATE, DELETE, CREATE/DROP COLLECTION,
// BEGIN/COMMIT/ROLLBACK, and PRAGMA.
type Command interface {
	commandNode()
}

// SelectCmd is a top-level `SELECT ...` statement.
type SelectCmd struct {
	Query *Query
}

// InsertCmd is `INSERT INTO coll VALUE <json>` or
// `INSERT INTO coll <select>`.
type InsertCmd struct {
	Collection string
	Value      Expr    // non-nil for INSERT ... VALUE
	Query      *Query  // non-nil for INSERT ... SELECT
}

// UpdateCmd is `UPDATE coll SET a=b[, ...] [WHERE cond] [ELSE INSERT expr]`.
// ElseInsert, when non-nil, is evaluated and inserted as a new document
// if WHERE matched no rows (an upsert).
type UpdateCmd struct {
	Collection string
	Sets       []Assign
	Where      Expr
	ElseInsert Expr
}

// Assign is one `lvalue = expr` pair of an UPDATE's SET clause.
type Assign struct {
	Target Expr
	Value  Expr
}

// DeleteCmd is `DELETE FROM coll [WHERE cond]`.
type DeleteCmd struct {
	Collection string
	Where      Expr
}

// CreateCollectionCmd is `CREATE COLLECTION [IF NOT EXISTS] name`.
type CreateCollectionCmd struct {
	Collection  string
	IfNotExists bool
}

// DropCollectionCmd is `DROP COLLECTION [IF EXISTS] name`.
type DropCollectionCmd struct {
	Collection string
	IfExists   bool
}

// TxnCmd is BEGIN, COMMIT, or ROLLBACK.
type TxnCmd struct {
	Kind TxnKind
}

// TxnKind distinguishes the three transaction-control commands.
type TxnKind int

const (
	TxnBegin TxnKind = iota
	TxnCommit
	TxnRollback
)

// PragmaCmd is `PRAGMA name [= value]`, used for debug knobs such as
// PARSERTRACE.
type PragmaCmd struct {
	Name  string
	Value Expr
}

func (*SelectCmd) commandNode()          {}
func (*InsertCmd) commandNode()          {}
func (*UpdateCmd) commandNode()          {}
func (*DeleteCmd) commandNode()          {}
func (*CreateCollectionCmd) commandNode() {}
func (*DropCollectionCmd) commandNode()   {}
func (*TxnCmd) commandNode()              {}
func (*PragmaCmd) commandNode()           {}

// Query is one SELECT, optionally chained to further SELECTs by a
// compound operator (UNION/UNION ALL/EXCEPT/INTERSECT). The chain is
// represented as a left-leaning list via Next/Compound rather than a
// binary tree, matching the grammar's left-associative reading.
type Query struct {
	Distinct bool
	Columns  []ResultColumn
	From     DataSrc
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderTerm
	Limit    Expr
	Offset   Expr

	Compound     CompoundOp
	CompoundAll  bool // true selects the UNION ALL / pass-through variant
	Next         *Query
}

// ResultColumn is one column of the SELECT list: an expression plus an
// optional AS alias. A nil Expr with Star true means `SELECT *`.
type ResultColumn struct {
	Expr  Expr
	Alias string
	Star  bool
}

// OrderTerm is one `expr [ASC|DESC]` entry of an ORDER BY clause.
type OrderTerm struct {
	Expr Expr
	Desc bool
}

// CompoundOp names how a Query chains to its Next query.
type CompoundOp int

const (
	CompoundNone CompoundOp = iota
	CompoundUnion
	CompoundExcept
	CompoundIntersect
)

// DataSrc is the sum type for a FROM clause term: a bare collection
// scan, a comma-join of two sources, or a subquery, any of which may be
// wrapped in FLATTEN/EACH.
type DataSrc interface {
	dataSrcNode()
}

// CollectionSrc scans one collection, binding each row's document to
// Alias (defaulting to the collection name).
type CollectionSrc struct {
	Collection string
	Alias      string
}

// JoinSrc is a comma-separated FROM list: the cartesian product of
// Left and Right, evaluated left to right.
type JoinSrc struct {
	Left  DataSrc
	Right DataSrc
}

// SubquerySrc is a parenthesized SELECT used as a FROM term.
type SubquerySrc struct {
	Query *Query
	Alias string
}

// FlattenSrc wraps a source with a postfix `FLATTEN(exprs) AS alias` or
// `EACH(exprs) AS alias` operator: for each inner row, Exprs is
// evaluated and its result, if a non-empty array or struct, yields one
// new row per element, bound under Alias as a {"k":key,"v":value} pair.
// FLATTEN and EACH are semantically identical; Each only records which
// keyword the query used.
type FlattenSrc struct {
	Src   DataSrc
	Each  bool
	Exprs []Expr
	Alias string
}

func (*CollectionSrc) dataSrcNode() {}
func (*JoinSrc) dataSrcNode()       {}
func (*SubquerySrc) dataSrcNode()   {}
func (*FlattenSrc) dataSrcNode()    {}

// Expr is the sum type for every value-producing expression node.
type Expr interface {
	exprNode()
}

// Literal is a scalar literal (number, string, true, false, or null)
// captured verbatim by the scanner.
type Literal struct {
	Value *value.Value
}

// StructField is one `label: expr` (or bare `"label":expr`) element of
// a StructLit, in source order.
type StructField struct {
	Label string
	Value Expr
}

// StructLit is a `{label: expr, ...}` struct constructor. Labels may be
// bare identifiers or quoted strings; values are full subexpressions,
// evaluated in order at eval time (eval.Eval, not value.Parse).
type StructLit struct {
	Fields []StructField
}

// ArrayLit is a `[expr, ...]` array constructor, with each element a
// full subexpression evaluated in order.
type ArrayLit struct {
	Elems []Expr
}

// Ident is a bare column/field reference, e.g. `name`; the parser always
// builds a one-element Path, and dotted access such as `a.b` parses as
// Field nodes over an Ident.
type Ident struct {
	Path []string
}

// Star represents the bare `*` used only inside count(*).
type Star struct{}

// Param is a `?` placeholder bound positionally at Stmt creation time.
type Param struct {
	Index int
}

// Unary is a prefix operator applied to one operand: `-x`, `!x`, `~x`.
type Unary struct {
	Op  UnaryOp
	X   Expr
}

// UnaryOp enumerates xjd1's prefix operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
)

// Binary is an infix operator applied to two operands.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// BinaryOp enumerates xjd1's infix operators, in ascending precedence
// groups (see parse/expr.go for the precedence table).
type BinaryOp int

const (
	BinOr BinaryOp = iota
	BinAnd
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinLike
	BinIn
	BinBitOr
	BinBitAnd
	BinShl
	BinShr
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
)

// Between is `x BETWEEN lo AND hi`.
type Between struct {
	X, Lo, Hi Expr
	Not       bool
}

// Index is a subscript expression: `x[expr]`.
type Index struct {
	X     Expr
	Index Expr
}

// Field is a `.label` member access.
type Field struct {
	X     Expr
	Label string
}

// Call is a function call: `name(args...)`, with Star true only for
// the special `count(*)` form.
type Call struct {
	Name string
	Args []Expr
	Star bool
}

// Cond is the ternary `cond ? then : else` conditional expression.
type Cond struct {
	Cond, Then, Else Expr
}

// Exists wraps a subquery used as a boolean: true if it yields at
// least one row.
type Exists struct {
	Query *Query
}

// Subquery is a parenthesized SELECT used where a scalar value is
// expected; it must yield zero or one row (spec.md §9).
type Subquery struct {
	Query *Query
}

// Doc is the `doc` / `doc(name)` accessor exposing the current row (or
// a named FROM-clause alias) as a whole JSON value.
type Doc struct {
	Name string
}

func (*Literal) exprNode()   {}
func (*StructLit) exprNode() {}
func (*ArrayLit) exprNode()  {}
func (*Ident) exprNode()     {}
func (*Star) exprNode()      {}
func (*Param) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Between) exprNode()   {}
func (*Index) exprNode()     {}
func (*Field) exprNode()     {}
func (*Call) exprNode()      {}
func (*Cond) exprNode()      {}
func (*Exists) exprNode()    {}
func (*Subquery) exprNode()  {}
func (*Doc) exprNode()       {}
