package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	schema Schema
	calls  *int
}

func (f fakeSource) Schema() Schema { return f.schema }

func (f fakeSource) Scan(ctx *Context, opts ScanOptions) (ScanResult, error) {
	rows := []Row{
		NewRow([]string{"id"}, map[string]CellFunc{
			"id": func(ctx *Context) (Value, error) {
				*f.calls++
				return Int(1), nil
			},
		}),
	}
	return ScanResult{Rows: RowsToRowIter(rows...)}, nil
}

func TestCachedDataSourceMemoizesPerRowColumn(t *testing.T) {
	ctx := NewEmptyContext()
	calls := 0
	src := fakeSource{schema: Schema{{Name: "id", Type: KindInt}}, calls: &calls}
	cached := NewCachedDataSource(src)

	for i := 0; i < 3; i++ {
		res, err := cached.Scan(ctx, ScanOptions{})
		require.NoError(t, err)
		row, err := res.Rows.Next(ctx)
		require.NoError(t, err)
		v, err := row.Get(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, Int(1), v)
	}

	require.Equal(t, 1, calls, "cell must be computed once across repeated scans")
}
