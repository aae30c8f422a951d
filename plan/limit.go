package plan

import "github.com/gabereiser/lazysql/sql"

// LimitOffset drops Offset rows, then forwards up to Limit.
// Elided entirely by Builder when both were pushed into a Scan.
type LimitOffset struct {
	Child  Node
	Limit  *int
	Offset *int
	Sch    sql.Schema
}

func (l *LimitOffset) Schema() sql.Schema { return l.Sch }
func (l *LimitOffset) Children() []Node   { return []Node{l.Child} }
