package plan

import "github.com/gabereiser/lazysql/sql"

// CTERef is a reference to a WITH-clause name. It does not own a built
// child: Rebuild re-plans the CTE's definition fresh on every reference —
// streaming re-execution, not materialization. This also sidesteps any
// cycle hazard, since CTEs resolve by name rather than by a shared
// pointer to one built subtree.
type CTERef struct {
	Name    string
	Alias   string
	Rebuild func() (Node, error)
	Sch     sql.Schema
}

func (c *CTERef) Schema() sql.Schema { return c.Sch }
func (c *CTERef) Children() []Node   { return nil }
