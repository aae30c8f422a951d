package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/sql"
)

func builtinRegistry() *sql.FunctionRegistry {
	r := sql.NewFunctionRegistry()
	r.Register(&sql.FunctionDescriptor{Name: "COUNT", Arity: sql.Arity{Min: 0, Max: 1, AcceptsStar: true}, IsAggregate: true})
	r.Register(&sql.FunctionDescriptor{Name: "SUM", Arity: sql.FixedArity(1), IsAggregate: true})
	r.Register(&sql.FunctionDescriptor{Name: "UPPER", Arity: sql.FixedArity(1)})
	r.Register(&sql.FunctionDescriptor{Name: "COALESCE", Arity: sql.AtLeastArity(1)})
	r.Register(&sql.FunctionDescriptor{Name: "ST_DISTANCE", Arity: sql.FixedArity(2)})
	return r
}

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT a, b AS bee FROM t WHERE a > 1 LIMIT 10 OFFSET 5"})
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 2)
	require.Equal(t, "bee", stmt.Projection[1].Alias)
	require.Equal(t, "t", stmt.From.Name)
	require.NotNil(t, stmt.Where)
	require.Equal(t, 10, *stmt.Limit)
	require.Equal(t, 5, *stmt.Offset)
}

func TestParseStarAndQualifiedStar(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT *, t.* FROM t"})
	require.NoError(t, err)
	require.IsType(t, &Star{}, stmt.Projection[0].Expr)
	star := stmt.Projection[1].Expr.(*Star)
	require.Equal(t, "t", star.Qualifier)
}

func TestParseWithCTE(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: `
		WITH recent AS (SELECT id FROM orders WHERE id > 100),
		     recent2 AS (SELECT id FROM recent)
		SELECT id FROM recent2
	`})
	require.NoError(t, err)
	require.Len(t, stmt.With, 2)
	require.Equal(t, "recent", stmt.With[0].Name)
	require.Equal(t, "recent2", stmt.With[1].Name)
	require.Equal(t, "recent2", stmt.From.Name)
}

func TestParseJoins(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: `
		SELECT a.x, b.y
		FROM a
		LEFT JOIN b ON a.id = b.id
		POSITIONAL JOIN c
	`})
	require.NoError(t, err)
	require.Len(t, stmt.Joins, 2)
	require.Equal(t, "LEFT", stmt.Joins[0].Kind)
	require.NotNil(t, stmt.Joins[0].On)
	require.Equal(t, "POSITIONAL", stmt.Joins[1].Kind)
	require.Nil(t, stmt.Joins[1].On)
}

func TestParseOrderByNullsFirstLast(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT a FROM t ORDER BY a DESC NULLS LAST, b NULLS FIRST"})
	require.NoError(t, err)
	require.Len(t, stmt.OrderBy, 2)
	require.True(t, stmt.OrderBy[0].Desc)
	require.NotNil(t, stmt.OrderBy[0].NullsFirst)
	require.False(t, *stmt.OrderBy[0].NullsFirst)
	require.NotNil(t, stmt.OrderBy[1].NullsFirst)
	require.True(t, *stmt.OrderBy[1].NullsFirst)
}

func TestParseUnionAll(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT a FROM t UNION ALL SELECT a FROM u"})
	require.NoError(t, err)
	require.NotNil(t, stmt.SetOp)
	require.True(t, stmt.SetOp.All)
	require.Equal(t, "u", stmt.SetOp.Right.From.Name)
}

func TestParseIntervalOutsideBinaryOpIsParseError(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT INTERVAL 1 DAY FROM t"})
	require.Error(t, err)
}

func TestParseIntervalInsideAdditiveIsValid(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT created_at + INTERVAL 1 DAY FROM t"})
	require.NoError(t, err)
	bin := stmt.Projection[0].Expr.(*BinaryExpr)
	require.Equal(t, "+", bin.Op)
	interval, ok := bin.Right.(*Interval)
	require.True(t, ok)
	require.Equal(t, "DAY", interval.Unit)
}

func TestParseFunctionArityError(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT SUM(a, b) FROM t", Functions: builtinRegistry()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "SUM")
}

func TestParseCountStarAcceptsStar(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT COUNT(*) FROM t", Functions: builtinRegistry()})
	require.NoError(t, err)
	call := stmt.Projection[0].Expr.(*FuncCall)
	require.True(t, call.Star)
}

func TestParseStarRejectedForNonStarFunction(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT UPPER(*) FROM t", Functions: builtinRegistry()})
	require.Error(t, err)
}

func TestParseUnknownFunctionError(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT NOPE(a) FROM t", Functions: builtinRegistry()})
	require.Error(t, err)
}

func TestParseFilterOnlyOnAggregate(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT UPPER(a) FILTER (WHERE a > 1) FROM t", Functions: builtinRegistry()})
	require.Error(t, err)

	stmt, err := Parse(ParseOptions{Query: "SELECT SUM(a) FILTER (WHERE a > 1) FROM t", Functions: builtinRegistry()})
	require.NoError(t, err)
	call := stmt.Projection[0].Expr.(*FuncCall)
	require.NotNil(t, call.Filter)
}

func TestParseBetweenInLikeNot(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: `
		SELECT a FROM t
		WHERE a BETWEEN 1 AND 10
		  AND a NOT BETWEEN 20 AND 30
		  AND b LIKE 'foo%'
		  AND b NOT LIKE 'bar%'
		  AND c IN (1, 2, 3)
		  AND c NOT IN (4, 5)
	`})
	require.NoError(t, err)
	require.NotNil(t, stmt.Where)
}

func TestParseCaseExpression(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END FROM t"})
	require.NoError(t, err)
	ce := stmt.Projection[0].Expr.(*CaseExpr)
	require.Nil(t, ce.Operand)
	require.Len(t, ce.Whens, 1)
	require.NotNil(t, ce.Else)
}

func TestParseCastAndExists(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: `
		SELECT CAST(a AS INTEGER)
		FROM t
		WHERE EXISTS (SELECT 1 FROM u WHERE u.id = 1)
	`})
	require.NoError(t, err)
	cast := stmt.Projection[0].Expr.(*Cast)
	require.Equal(t, "INTEGER", cast.Target)
	ex := stmt.Where.(*ExistsExpr)
	require.False(t, ex.Negated)
}

func TestParseDerivedTableRequiresAlias(t *testing.T) {
	_, err := Parse(ParseOptions{Query: "SELECT a FROM (SELECT a FROM t)"})
	require.Error(t, err)

	stmt, err := Parse(ParseOptions{Query: "SELECT a FROM (SELECT a FROM t) sub"})
	require.NoError(t, err)
	require.NotNil(t, stmt.From.Subquery)
	require.Equal(t, "sub", stmt.From.Alias)
}

func TestParseBigIntegerLiteralBecomesDecimal(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT 123456789012345678901 FROM t"})
	require.NoError(t, err)
	lit := stmt.Projection[0].Expr.(*Literal)
	require.Equal(t, sql.KindDecimal, lit.Value.Kind())
}

// More than 18 significant digits routes to decimal even with a fractional
// part or exponent; small fractional literals stay float.
func TestParseBigFractionalLiteralBecomesDecimal(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: "SELECT 12345678901234567.89 FROM t"})
	require.NoError(t, err)
	lit := stmt.Projection[0].Expr.(*Literal)
	require.Equal(t, sql.KindDecimal, lit.Value.Kind())
	require.Equal(t, "12345678901234567.89", lit.Value.Text())

	stmt, err = Parse(ParseOptions{Query: "SELECT 1234567890123456789.5e2 FROM t"})
	require.NoError(t, err)
	lit = stmt.Projection[0].Expr.(*Literal)
	require.Equal(t, sql.KindDecimal, lit.Value.Kind())

	stmt, err = Parse(ParseOptions{Query: "SELECT 3.14 FROM t"})
	require.NoError(t, err)
	lit = stmt.Projection[0].Expr.(*Literal)
	require.Equal(t, sql.KindFloat, lit.Value.Kind())
}

func TestParseDistinctAndGroupByHaving(t *testing.T) {
	stmt, err := Parse(ParseOptions{Query: `
		SELECT DISTINCT a, SUM(b) FROM t GROUP BY a HAVING SUM(b) > 10
	`, Functions: builtinRegistry()})
	require.NoError(t, err)
	require.True(t, stmt.Distinct)
	require.Len(t, stmt.GroupBy, 1)
	require.NotNil(t, stmt.Having)
}
