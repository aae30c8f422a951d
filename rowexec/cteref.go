package rowexec

import (
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execCTERef re-plans and re-executes the CTE's definition fresh on
// every reference, then overlays the reference's alias qualifier the
// same way a derived table does.
func (ex *Executor) execCTERef(ctx *sql.Context, n *plan.CTERef) (sql.RowIter, error) {
	rebuilt, err := n.Rebuild()
	if err != nil {
		return nil, err
	}
	child, err := ex.Execute(ctx, rebuilt)
	if err != nil {
		return nil, err
	}
	return &qualifyIter{inner: child, qualifier: n.Alias}, nil
}
