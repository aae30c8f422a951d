package plan

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// ProjectedColumn is one output column: an expression and the name it is
// exposed under, either an explicit alias or the synthesized default.
type ProjectedColumn struct {
	Expr  ast.ExprNode
	Name  string
	Star  bool   // expands to every input column at execution time
	Qual  string // for a qualified star (t.*), the qualifier to expand
}

// Project constructs one output row per input row with lazily-evaluated
// cells: a cell not read by a downstream consumer never
// forces the underlying expression.
type Project struct {
	Child   Node
	Columns []ProjectedColumn
	Sch     sql.Schema
}

func (p *Project) Schema() sql.Schema { return p.Sch }
func (p *Project) Children() []Node   { return []Node{p.Child} }
