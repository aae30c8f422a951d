// Package engine is the embeddable front door: a small stateful wrapper
// around the tokenizer, parser, planner and executor that a host
// application constructs once, registers its tables and functions
// against, and then drives query by query. Engine itself is a thin facade
// holding a catalog and a function registry, with the real work delegated
// to the packages beneath it.
package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/expression/function"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/rowexec"
	"github.com/gabereiser/lazysql/sql"
)

// Config holds the ambient services an Engine is built with. Every field is
// optional; the zero Config produces a working Engine with the standard
// logger, a real-time clock, and no build-row cap.
type Config struct {
	// Logger receives per-query and per-subquery diagnostic output. Nil
	// falls back to logrus.StandardLogger().
	Logger logrus.FieldLogger

	// Now pins the clock CURRENT_DATE/CURRENT_TIMESTAMP read from. Nil
	// falls back to time.Now.
	Now func() time.Time

	// MaxBuildRows caps how many rows a single blocking operator (Sort,
	// RandomShuffle, Aggregate's group table, a join's buffered side,
	// Distinct's seen set) may buffer before execution fails with
	// ErrUnsupportedFeature. EstimateCost does not consult it. Zero means
	// unbounded, relying on the host's own memory limits rather than a
	// hardcoded one.
	MaxBuildRows int
}

// Engine owns the mutable state a running query needs: the table catalog,
// the function registry (builtins overlaid with any host-registered
// additions), and the executor that ties parsing to execution.
type Engine struct {
	config    Config
	functions *sql.FunctionRegistry
	tables    plan.MapCatalog
	executor  *rowexec.Executor
}

// New builds an Engine with the full builtin function catalog preloaded and
// an empty table catalog; call RegisterTable before running any query that
// references one.
func New(cfg Config) *Engine {
	functions := sql.NewOverlayRegistry(function.NewBuiltins())
	tables := plan.MapCatalog{}
	return &Engine{
		config:    cfg,
		functions: functions,
		tables:    tables,
		executor:  rowexec.NewExecutor(tables, functions),
	}
}

// RegisterTable makes src resolvable as name in FROM clauses. Name
// comparison is case-insensitive, matching plan.MapCatalog.
func (e *Engine) RegisterTable(name string, src sql.DataSource) {
	e.tables[sql.NormalizeIdent(name)] = src
}

// RegisterFunction adds a host-supplied function (or overrides a builtin of
// the same name) on top of the builtin catalog.
func (e *Engine) RegisterFunction(desc *sql.FunctionDescriptor) {
	e.functions.Register(desc)
}

// Functions exposes the engine's function registry, e.g. to pass to
// ast.Parse for eager arity validation outside of the engine's own Parse
// method.
func (e *Engine) Functions() *sql.FunctionRegistry { return e.functions }

// NewContext builds a *sql.Context carrying this Engine's configured logger
// and clock, wrapping parent (context.Background() if nil).
func (e *Engine) NewContext(parent context.Context) *sql.Context {
	var opts []func(*sql.Context)
	if e.config.Logger != nil {
		opts = append(opts, sql.WithLogger(e.config.Logger))
	}
	if e.config.Now != nil {
		opts = append(opts, sql.WithClock(e.config.Now))
	}
	if e.config.MaxBuildRows > 0 {
		opts = append(opts, sql.WithMaxBuildRows(e.config.MaxBuildRows))
	}
	return sql.NewContext(parent, opts...)
}

// Tokenize lexes query, independent of this Engine's table/function state.
func (e *Engine) Tokenize(query string) ([]ast.Token, error) { return Tokenize(query) }

// Parse parses query against this Engine's function registry, so unknown
// function calls and arity mismatches are caught before planning.
func (e *Engine) Parse(query string) (*ast.SelectStatement, error) {
	return Parse(query, e.functions)
}

// Plan lowers stmt into a physical plan tree using this Engine's table
// catalog and function registry.
func (e *Engine) Plan(stmt *ast.SelectStatement) (plan.Node, error) {
	return e.executor.Plan(stmt)
}

// Execute runs node, returning a lazily-evaluated row stream.
func (e *Engine) Execute(ctx *sql.Context, node plan.Node) (sql.RowIter, error) {
	return e.executor.Execute(ctx, node)
}

// Collect drains iter into a slice of column-name-keyed maps, forcing every
// lazy cell along the way.
func (e *Engine) Collect(ctx *sql.Context, iter sql.RowIter) ([]map[string]sql.Value, error) {
	return Collect(ctx, iter)
}

// CachedDataSource wraps src with a per-cell memoization cache shared across
// every scan performed through the returned wrapper.
func (e *Engine) CachedDataSource(src sql.DataSource) sql.DataSource {
	return CachedDataSource(src)
}

// EstimateCost produces a relative cost estimate for node, per EstimateCost.
func (e *Engine) EstimateCost(ctx *sql.Context, node plan.Node) (float64, error) {
	return EstimateCost(ctx, node)
}

// Query runs sqlText end to end — parse, plan, execute, collect — against
// this Engine's registered tables and functions. It is the convenience path
// most callers want; Tokenize/Parse/Plan/Execute/Collect remain available
// individually for callers that need to inspect or cache an intermediate
// stage (e.g. planning once and executing the same node repeatedly with
// different contexts).
func (e *Engine) Query(ctx *sql.Context, sqlText string) ([]map[string]sql.Value, error) {
	stmt, err := e.Parse(sqlText)
	if err != nil {
		return nil, err
	}
	node, err := e.Plan(stmt)
	if err != nil {
		return nil, err
	}
	iter, err := e.Execute(ctx, node)
	if err != nil {
		return nil, err
	}
	return e.Collect(ctx, iter)
}
