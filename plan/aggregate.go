package plan

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// AggregateCall is one distinct aggregate function invocation referenced by
// the projection and/or HAVING clause. Alias is the canonical key the
// executor stores the aggregate's result under on the synthetic group row
// (the default-alias rule, reused here so expression evaluation
// of the same FuncCall node elsewhere resolves to the same stored value).
type AggregateCall struct {
	Call  *ast.FuncCall
	Alias string
}

// Aggregate implements GROUP BY (HashAggregate) and the no-GROUP-BY
// single-group case. GroupBy is empty for the latter.
// NonAggColumns are plain columns referenced alongside aggregates without
// GROUP BY; they bind to the first row's value.
type Aggregate struct {
	Child         Node
	GroupBy       []ast.ExprNode
	Aggregates    []AggregateCall
	NonAggColumns []ast.ExprNode
	Having        ast.ExprNode
	Sch           sql.Schema
}

func (a *Aggregate) Schema() sql.Schema { return a.Sch }
func (a *Aggregate) Children() []Node   { return []Node{a.Child} }
