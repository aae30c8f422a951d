package plan

import "github.com/gabereiser/lazysql/sql"

// SetOp is UNION / UNION ALL: a streaming concatenation of Left and
// Right, wrapped in a Distinct node by Builder when All is false.
type SetOp struct {
	Left  Node
	Right Node
	All   bool
	Sch   sql.Schema
}

func (s *SetOp) Schema() sql.Schema { return s.Sch }
func (s *SetOp) Children() []Node   { return []Node{s.Left, s.Right} }
