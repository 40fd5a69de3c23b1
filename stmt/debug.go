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
	"fmt"
	"strings"

	"github.com/xjd1/xjd1/parse"
	"github.com/xjd1/xjd1/value"
)

// DebugListing renders an indented dump of the statement's parsed
// Command tree, grounded on sql/string.go's one-String()-method-per-
// node convention, collapsed here into a single recursive switch since
// stmt owns the only consumer of this view.
func (s *Stmt) DebugListing() string {
	var b strings.Builder
	writeCommand(&b, 0, s.cmd)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func writeCommand(b *strings.Builder, depth int, c parse.Command) {
	switch x := c.(type) {
	case *parse.SelectCmd:
		indent(b, depth)
		b.WriteString("Select\n")
		writeQuery(b, depth+1, x.Query)
	case *parse.InsertCmd:
		indent(b, depth)
		fmt.Fprintf(b, "Insert into=%s\n", x.Collection)
		if x.Value != nil {
			writeExpr(b, depth+1, x.Value)
		}
		if x.Query != nil {
			writeQuery(b, depth+1, x.Query)
		}
	case *parse.UpdateCmd:
		indent(b, depth)
		fmt.Fprintf(b, "Update collection=%s\n", x.Collection)
		for _, a := range x.Sets {
			indent(b, depth+1)
			b.WriteString("Set\n")
			writeExpr(b, depth+2, a.Target)
			writeExpr(b, depth+2, a.Value)
		}
		if x.Where != nil {
			indent(b, depth+1)
			b.WriteString("Where\n")
			writeExpr(b, depth+2, x.Where)
		}
		if x.ElseInsert != nil {
			indent(b, depth+1)
			b.WriteString("ElseInsert\n")
			writeExpr(b, depth+2, x.ElseInsert)
		}
	case *parse.DeleteCmd:
		indent(b, depth)
		fmt.Fprintf(b, "Delete from=%s\n", x.Collection)
		if x.Where != nil {
			writeExpr(b, depth+1, x.Where)
		}
	case *parse.CreateCollectionCmd:
		indent(b, depth)
		fmt.Fprintf(b, "CreateCollection name=%s ifNotExists=%v\n", x.Collection, x.IfNotExists)
	case *parse.DropCollectionCmd:
		indent(b, depth)
		fmt.Fprintf(b, "DropCollection name=%s ifExists=%v\n", x.Collection, x.IfExists)
	case *parse.TxnCmd:
		indent(b, depth)
		fmt.Fprintf(b, "Txn kind=%d\n", x.Kind)
	case *parse.PragmaCmd:
		indent(b, depth)
		fmt.Fprintf(b, "Pragma name=%s\n", x.Name)
		if x.Value != nil {
			writeExpr(b, depth+1, x.Value)
		}
	default:
		indent(b, depth)
		b.WriteString("?\n")
	}
}

func writeQuery(b *strings.Builder, depth int, q *parse.Query) {
	indent(b, depth)
	fmt.Fprintf(b, "Query distinct=%v\n", q.Distinct)
	for _, col := range q.Columns {
		indent(b, depth+1)
		if col.Star {
			b.WriteString("Column *\n")
			continue
		}
		fmt.Fprintf(b, "Column alias=%q\n", col.Alias)
		writeExpr(b, depth+2, col.Expr)
	}
	if q.From != nil {
		indent(b, depth+1)
		b.WriteString("From\n")
		writeDataSrc(b, depth+2, q.From)
	}
	if q.Where != nil {
		indent(b, depth+1)
		b.WriteString("Where\n")
		writeExpr(b, depth+2, q.Where)
	}
	for _, g := range q.GroupBy {
		indent(b, depth+1)
		b.WriteString("GroupBy\n")
		writeExpr(b, depth+2, g)
	}
	if q.Having != nil {
		indent(b, depth+1)
		b.WriteString("Having\n")
		writeExpr(b, depth+2, q.Having)
	}
	for _, o := range q.OrderBy {
		indent(b, depth+1)
		fmt.Fprintf(b, "OrderBy desc=%v\n", o.Desc)
		writeExpr(b, depth+2, o.Expr)
	}
	if q.Limit != nil {
		indent(b, depth+1)
		b.WriteString("Limit\n")
		writeExpr(b, depth+2, q.Limit)
	}
	if q.Offset != nil {
		indent(b, depth+1)
		b.WriteString("Offset\n")
		writeExpr(b, depth+2, q.Offset)
	}
	if q.Next != nil {
		indent(b, depth+1)
		fmt.Fprintf(b, "Compound op=%d all=%v\n", q.Compound, q.CompoundAll)
		writeQuery(b, depth+2, q.Next)
	}
}

func writeDataSrc(b *strings.Builder, depth int, d parse.DataSrc) {
	switch x := d.(type) {
	case *parse.CollectionSrc:
		indent(b, depth)
		fmt.Fprintf(b, "Collection name=%s alias=%s\n", x.Collection, x.Alias)
	case *parse.JoinSrc:
		indent(b, depth)
		b.WriteString("Join\n")
		writeDataSrc(b, depth+1, x.Left)
		writeDataSrc(b, depth+1, x.Right)
	case *parse.SubquerySrc:
		indent(b, depth)
		fmt.Fprintf(b, "Subquery alias=%s\n", x.Alias)
		writeQuery(b, depth+1, x.Query)
	case *parse.FlattenSrc:
		indent(b, depth)
		fmt.Fprintf(b, "Flatten each=%v alias=%s\n", x.Each, x.Alias)
		writeDataSrc(b, depth+1, x.Src)
		for _, e := range x.Exprs {
			writeExpr(b, depth+1, e)
		}
	}
}

func writeExpr(b *strings.Builder, depth int, e parse.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *parse.Literal:
		indent(b, depth)
		fmt.Fprintf(b, "Literal %s\n", value.RenderString(x.Value))
	case *parse.Ident:
		indent(b, depth)
		fmt.Fprintf(b, "Ident %s\n", strings.Join(x.Path, "."))
	case *parse.Star:
		indent(b, depth)
		b.WriteString("Star\n")
	case *parse.Param:
		indent(b, depth)
		fmt.Fprintf(b, "Param ?%d\n", x.Index)
	case *parse.Unary:
		indent(b, depth)
		fmt.Fprintf(b, "Unary op=%d\n", x.Op)
		writeExpr(b, depth+1, x.X)
	case *parse.Binary:
		indent(b, depth)
		fmt.Fprintf(b, "Binary op=%d\n", x.Op)
		writeExpr(b, depth+1, x.Left)
		writeExpr(b, depth+1, x.Right)
	case *parse.Between:
		indent(b, depth)
		fmt.Fprintf(b, "Between not=%v\n", x.Not)
		writeExpr(b, depth+1, x.X)
		writeExpr(b, depth+1, x.Lo)
		writeExpr(b, depth+1, x.Hi)
	case *parse.Index:
		indent(b, depth)
		b.WriteString("Index\n")
		writeExpr(b, depth+1, x.X)
		writeExpr(b, depth+1, x.Index)
	case *parse.Field:
		indent(b, depth)
		fmt.Fprintf(b, "Field label=%s\n", x.Label)
		writeExpr(b, depth+1, x.X)
	case *parse.Call:
		indent(b, depth)
		fmt.Fprintf(b, "Call name=%s star=%v\n", x.Name, x.Star)
		for _, a := range x.Args {
			writeExpr(b, depth+1, a)
		}
	case *parse.Cond:
		indent(b, depth)
		b.WriteString("Cond\n")
		writeExpr(b, depth+1, x.Cond)
		writeExpr(b, depth+1, x.Then)
		writeExpr(b, depth+1, x.Else)
	case *parse.Exists:
		indent(b, depth)
		b.WriteString("Exists\n")
		writeQuery(b, depth+1, x.Query)
	case *parse.Subquery:
		indent(b, depth)
		b.WriteString("Subquery\n")
		writeQuery(b, depth+1, x.Query)
	case *parse.Doc:
		indent(b, depth)
		fmt.Fprintf(b, "Doc name=%q\n", x.Name)
	case *parse.StructLit:
		indent(b, depth)
		b.WriteString("StructLit\n")
		for _, f := range x.Fields {
			indent(b, depth+1)
			fmt.Fprintf(b, "Field label=%s\n", f.Label)
			writeExpr(b, depth+2, f.Value)
		}
	case *parse.ArrayLit:
		indent(b, depth)
		b.WriteString("ArrayLit\n")
		for _, el := range x.Elems {
			writeExpr(b, depth+1, el)
		}
	}
}
