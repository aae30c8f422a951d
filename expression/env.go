// Package expression evaluates ast.ExprNode trees against a sql.Row,
// yielding a sql.Value. It is the evaluator leaf of the pipeline: plan
// and rowexec both depend on it, and it depends on nothing above sql and
// ast.
package expression

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// Env is the evaluation environment threaded through every Eval call: the
// function registry (builtins plus any RegisterFunction overrides) and,
// for aggregate FuncCall nodes, the alias key under which the Aggregate
// operator already stored the computed result on the current row (the
// executor computes aggregates once per group; expression evaluation of the
// same FuncCall node elsewhere — HAVING, an outer projection — must read
// that stored value rather than recomputing it, since there may be no raw
// per-row state left to recompute it from).
//
// Subqueries are not correlated, so an Env has no access to
// an enclosing row — it only needs a way to run a subquery statement to
// completion. Those three hooks are wired by rowexec, the only layer that
// holds a plan.Builder and can actually plan-and-execute a nested
// SelectStatement; left nil, the corresponding ExprNode kinds report
// ErrUnsupportedFeature instead of panicking on a nil call.
type Env struct {
	Functions *sql.FunctionRegistry

	EvalInSubquery     func(ctx *sql.Context, stmt *ast.SelectStatement) ([]sql.Value, error)
	EvalExists         func(ctx *sql.Context, stmt *ast.SelectStatement) (bool, error)
	EvalScalarSubquery func(ctx *sql.Context, stmt *ast.SelectStatement) (sql.Value, error)
}

func NewEnv(functions *sql.FunctionRegistry) *Env {
	return &Env{Functions: functions}
}
