package rowexec

import (
	"io"

	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execScan builds a deferred scan over the bound DataSource: the source is
// not invoked until the first Next, so a consumer that cancels (or never
// pulls a row) causes zero source scans. On first pull it validates the
// source's response against the pushdown-hint protocol and
// reconstructs any hint the source declared it did not honor, so the stream
// downstream never sees an unfiltered or untrimmed row.
func (ex *Executor) execScan(ctx *sql.Context, n *plan.Scan) (sql.RowIter, error) {
	return &scanIter{node: n}, nil
}

type scanIter struct {
	node  *plan.Scan
	inner sql.RowIter
}

func (it *scanIter) Next(ctx *sql.Context) (sql.Row, error) {
	if it.inner == nil {
		if ctx.Cancelled() {
			return sql.Row{}, io.EOF
		}
		inner, err := it.open(ctx)
		if err != nil {
			return sql.Row{}, err
		}
		it.inner = inner
	}
	return it.inner.Next(ctx)
}

func (it *scanIter) open(ctx *sql.Context) (sql.RowIter, error) {
	n := it.node
	res, err := n.Source.Scan(ctx, sql.ScanOptions{Hints: n.Hints})
	if err != nil {
		return nil, err
	}
	if err := sql.ValidateScanResult(n.Hints, res); err != nil {
		return nil, err
	}

	var iter sql.RowIter = &qualifyIter{inner: res.Rows, qualifier: n.QualifiedName()}

	if n.Hints.Where != nil && !res.AppliedWhere {
		iter = newFilterIter(iter, n.Hints.Where)
	}
	if (n.Hints.Limit != nil || n.Hints.Offset != nil) && !res.AppliedLimitOffset {
		iter = newLimitOffsetIter(iter, n.Hints.Limit, n.Hints.Offset)
	}
	return iter, nil
}

func (it *scanIter) Close(ctx *sql.Context) error {
	if it.inner == nil {
		return nil
	}
	return it.inner.Close(ctx)
}

// qualifyIter overlays qualifier.column onto every row of inner, so a join
// or outer query can reference this scan's columns unambiguously even when
// its bare names collide with another table's.
type qualifyIter struct {
	inner     sql.RowIter
	qualifier string
}

func (it *qualifyIter) Next(ctx *sql.Context) (sql.Row, error) {
	row, err := it.inner.Next(ctx)
	if err != nil {
		return sql.Row{}, err
	}
	return qualifyRow(it.qualifier, row), nil
}

func (it *qualifyIter) Close(ctx *sql.Context) error { return it.inner.Close(ctx) }
