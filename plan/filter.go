package plan

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// Filter is a streaming predicate node: rows whose Where expression
// evaluates truthy-non-null pass through.
type Filter struct {
	Child Node
	Where ast.ExprNode
	Sch   sql.Schema
}

func (f *Filter) Schema() sql.Schema { return f.Sch }
func (f *Filter) Children() []Node   { return []Node{f.Child} }
