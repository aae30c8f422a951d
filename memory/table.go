// Package memory wraps a plain in-memory array of rows into the uniform
// asynchronous row-scan contract (sql.DataSource), honoring the pushdown
// hints it is able to (columns, where, limit/offset) via the structural
// sql.Expr interface so it never needs to import ast or expression.
package memory

import (
	"github.com/gabereiser/lazysql/sql"
)

// Table is a read-only in-memory table: a fixed schema plus a slice of
// already-known rows. Cells are still exposed as lazy CellFunc thunks (a
// closure over an already-resolved value) so Table satisfies the same
// asynchronous contract as an expensive external source; it just never
// actually waits on anything.
type Table struct {
	name    string
	schema  sql.Schema
	rows    [][]sql.Value
	weights map[string]float64
}

// NewTable builds a Table from a schema and a row-major slice of values,
// one inner slice per row, ordered to match schema.
func NewTable(name string, schema sql.Schema, rows [][]sql.Value) *Table {
	return &Table{name: name, schema: schema, rows: rows}
}

// WithColumnWeights attaches a relative per-column cost weight consumed by
// EstimateCost's Statistics() path. Weights
// are advisory only; omitted columns default to weight 1.
func (t *Table) WithColumnWeights(weights map[string]float64) *Table {
	t.weights = weights
	return t
}

func (t *Table) Name() string      { return t.name }
func (t *Table) Schema() sql.Schema { return t.schema }

// Statistics implements sql.StatisticsSource.
func (t *Table) Statistics(ctx *sql.Context) (*sql.SourceStatistics, error) {
	n := int64(len(t.rows))
	return &sql.SourceStatistics{NumRows: &n, ColumnWeights: t.weights}, nil
}

// Scan implements sql.DataSource. It honors every hint it is able to:
// Columns prunes which cells are constructed (extras are never returned,
// matching the "at least those columns" contract); Where is evaluated
// per-row via the structural sql.Expr interface, so the table always
// declares AppliedWhere=true when a hint is supplied; Limit/Offset are
// applied after Where, so AppliedLimitOffset is always true too. A richer
// external backend may choose to honor fewer hints, forcing the executor
// to reconstruct the rest — this in-memory adapter simply
// always can.
func (t *Table) Scan(ctx *sql.Context, opts sql.ScanOptions) (sql.ScanResult, error) {
	cols := opts.Hints.Columns
	if len(cols) == 0 {
		cols = t.schema.Names()
	}

	var out []sql.Row
	ordinal := 0
	for i, raw := range t.rows {
		ordinal = i + 1
		if ctx.Cancelled() {
			break
		}
		row := t.rowFor(ordinal, raw, cols)
		if opts.Hints.Where != nil {
			v, err := opts.Hints.Where.Eval(ctx, row)
			if err != nil {
				return sql.ScanResult{}, err
			}
			if v.IsNull() || !v.Truthy() {
				continue
			}
		}
		out = append(out, row)
	}

	appliedWhere := opts.Hints.Where != nil
	appliedLimitOffset := false
	if opts.Hints.Offset != nil || opts.Hints.Limit != nil {
		appliedLimitOffset = true
		offset := 0
		if opts.Hints.Offset != nil {
			offset = *opts.Hints.Offset
		}
		if offset > len(out) {
			offset = len(out)
		}
		out = out[offset:]
		if opts.Hints.Limit != nil && *opts.Hints.Limit < len(out) {
			out = out[:*opts.Hints.Limit]
		}
	}

	return sql.ScanResult{
		Rows:               sql.RowsToRowIter(out...),
		AppliedWhere:       appliedWhere,
		AppliedLimitOffset: appliedLimitOffset,
	}, nil
}

func (t *Table) rowFor(ordinal int, raw []sql.Value, cols []string) sql.Row {
	cells := make(map[string]sql.CellFunc, len(cols))
	for _, c := range cols {
		idx := t.schema.IndexOf(c)
		if idx < 0 {
			// Unknown requested column: the contract requires it still
			// appear, producing a null cell.
			cells[c] = func(ctx *sql.Context) (sql.Value, error) { return sql.Null(), nil }
			continue
		}
		v := raw[idx]
		cells[c] = func(ctx *sql.Context) (sql.Value, error) { return v, nil }
	}
	return sql.NewRow(cols, cells).WithOrdinal(ordinal)
}
