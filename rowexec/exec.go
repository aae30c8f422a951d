// Package rowexec is the executor: it walks a plan.Node tree bottom-up,
// building one sql.RowIter per operator. A plan tree is inert until
// something builds iterators over it. Every operator here is a streaming pull-consumer
// except where the operator's own semantics require buffering: Sort,
// RandomShuffle and Aggregate consume their whole input first, HashJoin
// buffers its build side, and NestedLoopJoin and PositionalJoin buffer
// their inputs. Distinct streams, remembering only the hashes it has seen.
package rowexec

import (
	"strings"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// Executor owns the one plan.Builder used to lower and re-lower statements
// (top-level, CTEs, subqueries) and the shared expression.Env whose
// subquery hooks it installs on itself, so an IN/EXISTS/scalar subquery
// encountered deep in an expression tree can be planned and executed
// without the expression package ever importing plan or rowexec.
type Executor struct {
	Builder *plan.Builder
	Env     *expression.Env
}

// NewExecutor wires a fresh Builder/Env pair against catalog and functions.
func NewExecutor(catalog plan.Catalog, functions *sql.FunctionRegistry) *Executor {
	env := expression.NewEnv(functions)
	ex := &Executor{Env: env}
	ex.Builder = plan.NewBuilder(catalog, env)
	env.EvalInSubquery = ex.evalInSubquery
	env.EvalExists = ex.evalExists
	env.EvalScalarSubquery = ex.evalScalarSubquery
	return ex
}

// Plan lowers a parsed statement through the Executor's Builder.
func (ex *Executor) Plan(stmt *ast.SelectStatement) (plan.Node, error) {
	return ex.Builder.Build(stmt)
}

// Execute builds a streaming sql.RowIter over node.
func (ex *Executor) Execute(ctx *sql.Context, node plan.Node) (sql.RowIter, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return ex.execScan(ctx, n)
	case *plan.Filter:
		return ex.execFilter(ctx, n)
	case *plan.Project:
		return ex.execProject(ctx, n)
	case *plan.HashJoin:
		return ex.execHashJoin(ctx, n)
	case *plan.NestedLoopJoin:
		return ex.execNestedLoopJoin(ctx, n)
	case *plan.PositionalJoin:
		return ex.execPositionalJoin(ctx, n)
	case *plan.Aggregate:
		return ex.execAggregate(ctx, n)
	case *plan.Sort:
		return ex.execSort(ctx, n)
	case *plan.RandomShuffle:
		return ex.execRandomShuffle(ctx, n)
	case *plan.Distinct:
		return ex.execDistinct(ctx, n)
	case *plan.LimitOffset:
		return ex.execLimitOffset(ctx, n)
	case *plan.CTERef:
		return ex.execCTERef(ctx, n)
	case *plan.SubqueryAlias:
		return ex.execSubqueryAlias(ctx, n)
	case *plan.SetOp:
		return ex.execSetOp(ctx, n)
	default:
		return nil, sql.ErrUnsupportedFeature.New("unexecutable plan node")
	}
}

// qualifyRow overlays a "qualifier.column" cell for every column currently
// on row, so downstream qualified Identifier references (t.col) resolve
// precisely even when an unqualified name collides across join sides.
// The planner's qualifier-based join-key resolution relies on the same
// convention; this is its execution-time counterpart.
func qualifyRow(qualifier string, row sql.Row) sql.Row {
	if qualifier == "" {
		return row
	}
	base := row
	for _, col := range base.Columns {
		c := col
		row = row.WithColumn(qualifier+"."+c, func(ctx *sql.Context) (sql.Value, error) {
			return base.Get(ctx, c)
		})
	}
	return row
}

// starNames resolves the bare output-column names a `*` or `qual.*`
// projection item expands to for one concrete row: unqualified expands to
// every name in fallback (the static child schema, so column order and
// presence is stable even if a row happens to omit a lazily-unset cell);
// qualified scans the row's qualified overlay columns for qualifier+".".
func starNames(row sql.Row, qualifier string, fallback []string) []string {
	if qualifier == "" {
		return fallback
	}
	prefix := qualifier + "."
	var names []string
	for _, c := range row.Columns {
		if strings.HasPrefix(c, prefix) {
			names = append(names, strings.TrimPrefix(c, prefix))
		}
	}
	return names
}
