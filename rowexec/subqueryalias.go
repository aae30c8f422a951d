package rowexec

import (
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execSubqueryAlias executes the derived table's own plan once and overlays
// its alias qualifier onto every row, so an outer reference like alias.col
// resolves the same way a base-table alias would.
func (ex *Executor) execSubqueryAlias(ctx *sql.Context, n *plan.SubqueryAlias) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	return &qualifyIter{inner: child, qualifier: n.Alias}, nil
}
