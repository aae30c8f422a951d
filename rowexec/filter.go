package rowexec

import (
	"io"

	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

func (ex *Executor) execFilter(ctx *sql.Context, n *plan.Filter) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	pred := expression.Compiled{Node: n.Where, Env: ex.Env}
	return newFilterIter(child, pred), nil
}

// filterIter drops any row whose predicate is null or falsy, the
// three-valued WHERE/HAVING rule.
type filterIter struct {
	inner sql.RowIter
	pred  sql.Expr
}

func newFilterIter(inner sql.RowIter, pred sql.Expr) sql.RowIter {
	return &filterIter{inner: inner, pred: pred}
}

func (it *filterIter) Next(ctx *sql.Context) (sql.Row, error) {
	for {
		if ctx.Cancelled() {
			return sql.Row{}, io.EOF
		}
		row, err := it.inner.Next(ctx)
		if err != nil {
			return sql.Row{}, err
		}
		v, err := it.pred.Eval(ctx, row)
		if err != nil {
			return sql.Row{}, err
		}
		if !v.IsNull() && v.Truthy() {
			return row, nil
		}
	}
}

func (it *filterIter) Close(ctx *sql.Context) error { return it.inner.Close(ctx) }
