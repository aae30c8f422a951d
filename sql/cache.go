package sql

import "sync"

// CachedDataSource wraps a DataSource with a (rowIndex, columnName) ->
// Future<Value> map shared across every scan performed over this wrapper
// instance: first write wins, nothing is ever evicted. It is intended to be
// owned by the caller (not the executor), so that a host application can
// construct one per table and reuse it across many queries to avoid
// recomputing expensive cells.
//
// Row identity for the cache key is the row's ordinal if the underlying
// source annotated one (e.g. because an offset hint was honored), otherwise
// a scan-local sequential counter starting at zero. This means two scans
// that traverse the same underlying rows in the same order share cache
// entries even if one applied a pushed-down offset and the other did not;
// two scans that filter to different row subsets simply get fewer cache
// hits, never wrong answers, since a miss always falls through to the
// wrapped source's own (idempotent) cell closure.
type CachedDataSource struct {
	inner DataSource
	mu    sync.Mutex
	cells map[int]map[string]*Future
}

// NewCachedDataSource wraps src. Calling it twice on the same src produces
// two independent caches; share a single *CachedDataSource across callers
// that want to share memoized results.
func NewCachedDataSource(src DataSource) *CachedDataSource {
	return &CachedDataSource{inner: src, cells: make(map[int]map[string]*Future)}
}

func (c *CachedDataSource) Schema() Schema { return c.inner.Schema() }

func (c *CachedDataSource) futureFor(rowIdx int, col string, fn CellFunc, ctx *Context) *Future {
	c.mu.Lock()
	defer c.mu.Unlock()
	byCol, ok := c.cells[rowIdx]
	if !ok {
		byCol = make(map[string]*Future)
		c.cells[rowIdx] = byCol
	}
	if f, ok := byCol[col]; ok {
		return f
	}
	f := NewFuture(func() (Value, error) { return fn(ctx) })
	byCol[col] = f
	return f
}

func (c *CachedDataSource) Scan(ctx *Context, opts ScanOptions) (ScanResult, error) {
	res, err := c.inner.Scan(ctx, opts)
	if err != nil {
		return ScanResult{}, err
	}
	if err := ValidateScanResult(opts.Hints, res); err != nil {
		return ScanResult{}, err
	}
	res.Rows = &cachedRowIter{parent: c, inner: res.Rows}
	return res, nil
}

type cachedRowIter struct {
	parent *CachedDataSource
	inner  RowIter
	pos    int
}

func (it *cachedRowIter) Next(ctx *Context) (Row, error) {
	row, err := it.inner.Next(ctx)
	if err != nil {
		return Row{}, err
	}
	idx := it.pos
	if ord, ok := row.RowOrdinal(); ok {
		idx = ord
	}
	it.pos++

	wrapped := row
	for _, col := range row.Columns {
		col := col
		orig := row.Cells[col]
		wrapped = wrapped.WithColumn(col, func(c *Context) (Value, error) {
			return it.parent.futureFor(idx, col, orig, c).Force()
		})
	}
	return wrapped, nil
}

func (it *cachedRowIter) Close(ctx *Context) error { return it.inner.Close(ctx) }
