package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

func mustParse(t *testing.T, q string, fns *sql.FunctionRegistry) ast.ExprNode {
	t.Helper()
	stmt, err := ast.Parse(ast.ParseOptions{Query: q, Functions: fns})
	require.NoError(t, err)
	return stmt.Projection[0].Expr
}

func rowWith(vals map[string]sql.Value) sql.Row {
	cols := make([]string, 0, len(vals))
	cells := make(map[string]sql.CellFunc, len(vals))
	for k, v := range vals {
		v := v
		cols = append(cols, k)
		cells[k] = func(ctx *sql.Context) (sql.Value, error) { return v, nil }
	}
	return sql.NewRow(cols, cells)
}

func TestEvalArithmeticAndNullPropagation(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	expr := mustParse(t, "SELECT 1 + 2 * 3", nil)
	v, err := Eval(ctx, sql.Row{}, expr, env)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsInt())

	divZero := mustParse(t, "SELECT 1 / 0", nil)
	v, err = Eval(ctx, sql.Row{}, divZero, env)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalThreeValuedAnd(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	row := rowWith(map[string]sql.Value{"a": sql.Null()})
	expr := mustParse(t, "SELECT a AND true", nil)
	v, err := Eval(ctx, row, expr, env)
	require.NoError(t, err)
	require.True(t, v.IsNull())

	row2 := rowWith(map[string]sql.Value{"a": sql.Bool(false)})
	v, err = Eval(ctx, row2, expr, env)
	require.NoError(t, err)
	require.False(t, v.IsNull())
	require.False(t, v.AsBool())
}

func TestEvalComparisonNullYieldsNull(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	row := rowWith(map[string]sql.Value{"a": sql.Null()})
	expr := mustParse(t, "SELECT a > 1", nil)
	v, err := Eval(ctx, row, expr, env)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalLike(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	row := rowWith(map[string]sql.Value{"s": sql.String("hello world")})
	expr := mustParse(t, "SELECT s LIKE 'hello%'", nil)
	v, err := Eval(ctx, row, expr, env)
	require.NoError(t, err)
	require.True(t, v.AsBool())
}

func TestEvalCastError(t *testing.T) {
	v, err := CastValue(sql.String("not a number"), "INTEGER")
	require.Error(t, err)
	_ = v
}

func TestEvalBetweenAndIn(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	row := rowWith(map[string]sql.Value{"a": sql.Int(5)})

	expr := mustParse(t, "SELECT a BETWEEN 1 AND 10", nil)
	v, err := Eval(ctx, row, expr, env)
	require.NoError(t, err)
	require.True(t, v.AsBool())

	expr2 := mustParse(t, "SELECT a IN (1, 2, 5)", nil)
	v, err = Eval(ctx, row, expr2, env)
	require.NoError(t, err)
	require.True(t, v.AsBool())
}

func TestEvalIdentifierQualified(t *testing.T) {
	ctx := sql.NewEmptyContext()
	env := NewEnv(nil)
	row := rowWith(map[string]sql.Value{"t.a": sql.Int(9), "a": sql.Int(1)})
	expr := mustParse(t, "SELECT t.a", nil)
	v, err := Eval(ctx, row, expr, env)
	require.NoError(t, err)
	require.Equal(t, int64(9), v.AsInt())
}

func TestDefaultAliasRules(t *testing.T) {
	stmt, err := ast.Parse(ast.ParseOptions{Query: "SELECT name, ROUND(price, 2), COUNT(*), 42 FROM t"})
	require.NoError(t, err)
	require.Equal(t, "name", DefaultAlias(stmt.Projection[0].Expr))
	require.Equal(t, "round_price", DefaultAlias(stmt.Projection[1].Expr))
	require.Equal(t, "count_all", DefaultAlias(stmt.Projection[2].Expr))
	require.Equal(t, "42", DefaultAlias(stmt.Projection[3].Expr))
}
