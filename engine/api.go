package engine

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/rowexec"
	"github.com/gabereiser/lazysql/sql"
)

// Tokenize lexes a query string in isolation, with no catalog or function
// registry involved — useful for a host that only wants to validate syntax
// or build its own tooling (e.g. syntax highlighting) on top of the token
// stream.
func Tokenize(query string) ([]ast.Token, error) {
	return ast.Tokenize(query)
}

// Parse tokenizes and parses query into a single SelectStatement. functions
// is optional: supplying it lets the parser eagerly reject unknown function
// names and arity mismatches instead of deferring the error to execution.
func Parse(query string, functions *sql.FunctionRegistry) (*ast.SelectStatement, error) {
	return ast.Parse(ast.ParseOptions{Query: query, Functions: functions})
}

// Plan lowers stmt into a physical plan tree against tables and functions.
//
// A Select can name any number of tables in its FROM/JOIN clauses, and
// pushdown-hint construction needs to resolve each one to a concrete
// sql.DataSource before a Scan node can be built, so Plan must be given a
// Catalog (or an Engine, via the method of the same name) rather than
// planning in a vacuum.
func Plan(stmt *ast.SelectStatement, tables plan.Catalog, functions *sql.FunctionRegistry) (plan.Node, error) {
	return rowexec.NewExecutor(tables, functions).Plan(stmt)
}

// Execute runs node against tables and functions, returning a lazy row
// stream. Subqueries embedded in node are planned and executed against the
// same tables/functions.
func Execute(ctx *sql.Context, node plan.Node, tables plan.Catalog, functions *sql.FunctionRegistry) (sql.RowIter, error) {
	return rowexec.NewExecutor(tables, functions).Execute(ctx, node)
}

// Collect drains iter, forcing every row's lazy cells, into a slice of
// plain column-name-keyed maps.
func Collect(ctx *sql.Context, iter sql.RowIter) ([]map[string]sql.Value, error) {
	return sql.Collect(ctx, iter)
}

// CachedDataSource wraps src with a per-(row, column) memoization cache
// shared across every scan run through the returned wrapper. Intended for a
// host that re-runs similar queries over the same slow-to-compute source.
func CachedDataSource(src sql.DataSource) sql.DataSource {
	return sql.NewCachedDataSource(src)
}
