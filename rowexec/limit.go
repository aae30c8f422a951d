package rowexec

import (
	"io"

	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

func (ex *Executor) execLimitOffset(ctx *sql.Context, n *plan.LimitOffset) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	return newLimitOffsetIter(child, n.Limit, n.Offset), nil
}

// limitOffsetIter drops Offset rows then forwards at most Limit. Shared
// by plan.LimitOffset execution and by Scan's
// hint-reconstruction path when a source declined to apply Limit/Offset
// itself.
type limitOffsetIter struct {
	inner     sql.RowIter
	remaining *int // nil means unlimited
	toSkip    int
}

func newLimitOffsetIter(inner sql.RowIter, limit, offset *int) sql.RowIter {
	it := &limitOffsetIter{inner: inner}
	if limit != nil {
		n := *limit
		it.remaining = &n
	}
	if offset != nil {
		it.toSkip = *offset
	}
	return it
}

func (it *limitOffsetIter) Next(ctx *sql.Context) (sql.Row, error) {
	for it.toSkip > 0 {
		if _, err := it.inner.Next(ctx); err != nil {
			return sql.Row{}, err
		}
		it.toSkip--
	}
	if it.remaining != nil {
		if *it.remaining <= 0 {
			return sql.Row{}, io.EOF
		}
		*it.remaining--
	}
	return it.inner.Next(ctx)
}

func (it *limitOffsetIter) Close(ctx *sql.Context) error { return it.inner.Close(ctx) }
