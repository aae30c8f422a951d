package rowexec

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/expression/function"
	"github.com/gabereiser/lazysql/memory"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

func usersTable() *memory.Table {
	schema := sql.Schema{
		{Name: "id", Type: sql.KindInt},
		{Name: "name", Type: sql.KindString},
		{Name: "age", Type: sql.KindInt},
		{Name: "city", Type: sql.KindString},
	}
	rows := [][]sql.Value{
		{sql.Int(1), sql.String("Alice"), sql.Int(30), sql.String("NYC")},
		{sql.Int(2), sql.String("Bob"), sql.Int(25), sql.String("LA")},
		{sql.Int(3), sql.String("Charlie"), sql.Int(35), sql.String("NYC")},
	}
	return memory.NewTable("users", schema, rows)
}

func ordersTable() *memory.Table {
	schema := sql.Schema{
		{Name: "order_id", Type: sql.KindInt},
		{Name: "user_id", Type: sql.KindInt},
		{Name: "product", Type: sql.KindString},
	}
	rows := [][]sql.Value{
		{sql.Int(100), sql.Int(1), sql.String("book")},
		{sql.Int(101), sql.Int(1), sql.String("pen")},
		{sql.Int(102), sql.Int(2), sql.String("lamp")},
	}
	return memory.NewTable("orders", schema, rows)
}

func testCatalog() plan.MapCatalog {
	return plan.MapCatalog{
		"users":  usersTable(),
		"orders": ordersTable(),
	}
}

// runQuery parses, plans, executes and collects query against catalog.
func runQuery(t *testing.T, catalog plan.MapCatalog, query string) []map[string]sql.Value {
	t.Helper()
	rows, err := tryQuery(catalog, query)
	require.NoError(t, err)
	return rows
}

func tryQuery(catalog plan.MapCatalog, query string) ([]map[string]sql.Value, error) {
	ex := NewExecutor(catalog, function.NewBuiltins())
	stmt, err := ast.Parse(ast.ParseOptions{Query: query, Functions: function.NewBuiltins()})
	if err != nil {
		return nil, err
	}
	node, err := ex.Plan(stmt)
	if err != nil {
		return nil, err
	}
	ctx := sql.NewEmptyContext()
	iter, err := ex.Execute(ctx, node)
	if err != nil {
		return nil, err
	}
	return sql.Collect(ctx, iter)
}

// stubSource is a DataSource that declines every pushdown hint, forcing the
// executor's reconstruction path, and counts scans and cell evaluations.
type stubSource struct {
	schema     sql.Schema
	rows       [][]sql.Value
	scans      int
	cellForces map[string]int

	// protocol-violation knobs
	claimLimitOffset bool
}

func newStubSource(schema sql.Schema, rows [][]sql.Value) *stubSource {
	return &stubSource{schema: schema, rows: rows, cellForces: map[string]int{}}
}

func (s *stubSource) Schema() sql.Schema { return s.schema }

func (s *stubSource) Scan(ctx *sql.Context, opts sql.ScanOptions) (sql.ScanResult, error) {
	s.scans++
	cols := s.schema.Names()
	out := make([]sql.Row, 0, len(s.rows))
	for i, raw := range s.rows {
		cells := make(map[string]sql.CellFunc, len(cols))
		for ci, c := range cols {
			c, v := c, raw[ci]
			cells[c] = func(ctx *sql.Context) (sql.Value, error) {
				s.cellForces[c]++
				return v, nil
			}
		}
		out = append(out, sql.NewRow(cols, cells).WithOrdinal(i+1))
	}
	return sql.ScanResult{
		Rows:               sql.RowsToRowIter(out...),
		AppliedWhere:       false,
		AppliedLimitOffset: s.claimLimitOffset,
	}, nil
}

func TestScanReconstructsDeclinedHints(t *testing.T) {
	src := newStubSource(sql.Schema{
		{Name: "id", Type: sql.KindInt},
	}, [][]sql.Value{
		{sql.Int(1)}, {sql.Int(2)}, {sql.Int(3)}, {sql.Int(4)},
	})
	catalog := plan.MapCatalog{"t": src}

	rows := runQuery(t, catalog, "SELECT id FROM t WHERE id > 1 LIMIT 2")
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0]["id"].AsInt())
	require.Equal(t, int64(3), rows[1]["id"].AsInt())
}

func TestScanRejectsProtocolViolation(t *testing.T) {
	src := newStubSource(sql.Schema{{Name: "id", Type: sql.KindInt}}, [][]sql.Value{{sql.Int(1)}})
	src.claimLimitOffset = true
	catalog := plan.MapCatalog{"t": src}

	_, err := tryQuery(catalog, "SELECT id FROM t WHERE id > 0 LIMIT 1")
	require.Error(t, err)
	require.True(t, sql.ErrDataSourceProtocol.Is(err))
}

func TestLimitOffsetWindow(t *testing.T) {
	schema := sql.Schema{{Name: "id", Type: sql.KindInt}}
	rows := [][]sql.Value{{sql.Int(1)}, {sql.Int(2)}, {sql.Int(3)}, {sql.Int(4)}}
	catalog := plan.MapCatalog{"users": memory.NewTable("users", schema, rows)}

	got := runQuery(t, catalog, "SELECT * FROM users LIMIT 2 OFFSET 1")
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0]["id"].AsInt())
	require.Equal(t, int64(3), got[1]["id"].AsInt())
}

func TestLimitGrowthIsPrefix(t *testing.T) {
	catalog := testCatalog()
	small := runQuery(t, catalog, "SELECT id FROM users ORDER BY id LIMIT 1")
	large := runQuery(t, catalog, "SELECT id FROM users ORDER BY id LIMIT 3")
	require.Len(t, small, 1)
	require.Len(t, large, 3)
	require.Equal(t, small[0]["id"].AsInt(), large[0]["id"].AsInt())
}

// Cells of columns the query never references must never be forced, even
// though the source declined the column hint and returned full rows.
func TestUnreferencedCellsNeverForced(t *testing.T) {
	src := newStubSource(sql.Schema{
		{Name: "id", Type: sql.KindInt},
		{Name: "expensive", Type: sql.KindString},
	}, [][]sql.Value{
		{sql.Int(1), sql.String("blob-1")},
		{sql.Int(2), sql.String("blob-2")},
	})
	catalog := plan.MapCatalog{"t": src}

	rows := runQuery(t, catalog, "SELECT id FROM t WHERE id = 2")
	require.Len(t, rows, 1)
	require.Zero(t, src.cellForces["expensive"])
	require.NotZero(t, src.cellForces["id"])
}

func TestCancelledBeforeConsumeScansNothing(t *testing.T) {
	src := newStubSource(sql.Schema{{Name: "id", Type: sql.KindInt}}, [][]sql.Value{{sql.Int(1)}})
	catalog := plan.MapCatalog{"t": src}

	ex := NewExecutor(catalog, function.NewBuiltins())
	stmt, err := ast.Parse(ast.ParseOptions{Query: "SELECT id FROM t", Functions: function.NewBuiltins()})
	require.NoError(t, err)
	node, err := ex.Plan(stmt)
	require.NoError(t, err)

	parent, cancel := context.WithCancel(context.Background())
	ctx := sql.NewContext(parent)
	cancel()

	iter, err := ex.Execute(ctx, node)
	require.NoError(t, err)
	_, err = iter.Next(ctx)
	require.Equal(t, io.EOF, err)
	require.Zero(t, src.scans)
	require.Zero(t, src.cellForces["id"])
}

// Projection cells stay lazy through the whole operator chain: building the
// output row must not evaluate any projected expression until the consumer
// reads that column.
func TestProjectionCellsAreLazy(t *testing.T) {
	src := newStubSource(sql.Schema{
		{Name: "a", Type: sql.KindInt},
		{Name: "b", Type: sql.KindInt},
	}, [][]sql.Value{{sql.Int(1), sql.Int(2)}})
	catalog := plan.MapCatalog{"t": src}

	ex := NewExecutor(catalog, function.NewBuiltins())
	stmt, err := ast.Parse(ast.ParseOptions{Query: "SELECT a, b FROM t", Functions: function.NewBuiltins()})
	require.NoError(t, err)
	node, err := ex.Plan(stmt)
	require.NoError(t, err)

	ctx := sql.NewEmptyContext()
	iter, err := ex.Execute(ctx, node)
	require.NoError(t, err)
	defer iter.Close(ctx)

	row, err := iter.Next(ctx)
	require.NoError(t, err)
	require.Zero(t, src.cellForces["a"])
	require.Zero(t, src.cellForces["b"])

	v, err := row.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(1), v.AsInt())
	require.NotZero(t, src.cellForces["a"])
	require.Zero(t, src.cellForces["b"])
}

func TestRuntimeErrorCarriesRowOrdinal(t *testing.T) {
	schema := sql.Schema{{Name: "val", Type: sql.KindInt}}
	rows := [][]sql.Value{{sql.Int(1)}, {sql.Int(0)}}
	catalog := plan.MapCatalog{"d": memory.NewTable("d", schema, rows)}

	_, err := tryQuery(catalog, "SELECT SUBSTRING('hello', val, 2) FROM d")
	require.Error(t, err)
	require.Contains(t, err.Error(), "start position must be a positive integer, got 0")
	require.Contains(t, err.Error(), "(row 2)")
}
