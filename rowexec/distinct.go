package rowexec

import (
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execDistinct hashes the stable textual form of each row's values,
// emitting only the first occurrence of each distinct tuple.
func (ex *Executor) execDistinct(ctx *sql.Context, n *plan.Distinct) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	return &distinctIter{inner: child, seen: map[uint64]bool{}}, nil
}

type distinctIter struct {
	inner sql.RowIter
	seen  map[uint64]bool
}

func (it *distinctIter) Next(ctx *sql.Context) (sql.Row, error) {
	for {
		row, err := it.inner.Next(ctx)
		if err != nil {
			return sql.Row{}, err
		}
		values, err := row.Values(ctx)
		if err != nil {
			return sql.Row{}, err
		}
		h := hashKeys(values)
		if it.seen[h] {
			continue
		}
		it.seen[h] = true
		if err := ctx.CheckBuildRows("distinct", len(it.seen)); err != nil {
			return sql.Row{}, err
		}
		return row, nil
	}
}

func (it *distinctIter) Close(ctx *sql.Context) error {
	if it.inner == nil {
		return nil
	}
	return it.inner.Close(ctx)
}
