package sql

import "io"

// RowIter is the pull-iterator every physical operator implements: a
// cooperative lazy producer of rows. Next returns io.EOF once exhausted,
// the usual pull-iterator convention. Close releases any resources
// held by the iterator (e.g. a scan's underlying cursor) and must be safe
// to call even if Next was never called or already returned io.EOF.
type RowIter interface {
	Next(ctx *Context) (Row, error)
	Close(ctx *Context) error
}

// RowsToRowIter adapts a fixed slice of rows into a RowIter, used by tests
// and by operators that materialize an intermediate result (e.g. Sort).
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceIter{rows: rows}
}

type sliceIter struct {
	rows []Row
	pos  int
}

func (it *sliceIter) Next(ctx *Context) (Row, error) {
	if ctx.Cancelled() {
		return Row{}, io.EOF
	}
	if it.pos >= len(it.rows) {
		return Row{}, io.EOF
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceIter) Close(ctx *Context) error { return nil }

// Collect materializes every row of iter, awaiting every cell, into a slice
// of plain string-keyed maps, as used by the public collect() stage and by
// tests asserting on query results.
func Collect(ctx *Context, iter RowIter) ([]map[string]Value, error) {
	defer iter.Close(ctx)
	var out []map[string]Value
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		m := make(map[string]Value, len(row.Columns))
		for _, c := range row.Columns {
			v, err := row.Get(ctx, c)
			if err != nil {
				return nil, err
			}
			m[c] = v
		}
		out = append(out, m)
	}
}

// ForEach drains iter, invoking fn for every row, stopping early (without
// error) if fn returns io.EOF.
func ForEach(ctx *Context, iter RowIter, fn func(Row) error) error {
	defer iter.Close(ctx)
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
