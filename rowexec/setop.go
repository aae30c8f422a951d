package rowexec

import (
	"io"

	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execSetOp streams Left, then Right, concatenated. UNION ALL stops
// here; plain UNION is wrapped in a Distinct node by Builder, so
// duplicate removal never happens in this operator itself.
func (ex *Executor) execSetOp(ctx *sql.Context, n *plan.SetOp) (sql.RowIter, error) {
	left, err := ex.Execute(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := ex.Execute(ctx, n.Right)
	if err != nil {
		left.Close(ctx)
		return nil, err
	}
	return &concatIter{left: left, right: right}, nil
}

type concatIter struct {
	left, right sql.RowIter
	onRight     bool
}

func (it *concatIter) Next(ctx *sql.Context) (sql.Row, error) {
	if !it.onRight {
		row, err := it.left.Next(ctx)
		if err == nil {
			return row, nil
		}
		it.onRight = true
		if cerr := it.left.Close(ctx); cerr != nil {
			return sql.Row{}, cerr
		}
		if err != io.EOF {
			return sql.Row{}, err
		}
	}
	return it.right.Next(ctx)
}

func (it *concatIter) Close(ctx *sql.Context) error {
	if !it.onRight {
		it.left.Close(ctx)
	}
	return it.right.Close(ctx)
}
