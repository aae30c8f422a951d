package rowexec

import (
	"io"

	"github.com/google/uuid"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// Non-correlated subqueries are planned and run to
// completion independently of the enclosing row; each gets a short
// correlation id so a Debug-level trace across a deeply nested query can
// be followed through logs without threading the outer row context
// through — the usual request-id convention, at per-subquery scope
// instead of per-connection.

func (ex *Executor) planAndRun(ctx *sql.Context, stmt *ast.SelectStatement) (sql.RowIter, error) {
	id := uuid.New().String()
	ctx.Logger.WithField("subquery_id", id).Debug("planning non-correlated subquery")
	node, err := ex.Plan(stmt)
	if err != nil {
		return nil, err
	}
	return ex.Execute(ctx, node)
}

func (ex *Executor) evalInSubquery(ctx *sql.Context, stmt *ast.SelectStatement) ([]sql.Value, error) {
	iter, err := ex.planAndRun(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer iter.Close(ctx)

	var out []sql.Value
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row.Columns) == 0 {
			continue
		}
		v, err := row.Get(ctx, row.Columns[0])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (ex *Executor) evalExists(ctx *sql.Context, stmt *ast.SelectStatement) (bool, error) {
	iter, err := ex.planAndRun(ctx, stmt)
	if err != nil {
		return false, err
	}
	defer iter.Close(ctx)
	_, err = iter.Next(ctx)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (ex *Executor) evalScalarSubquery(ctx *sql.Context, stmt *ast.SelectStatement) (sql.Value, error) {
	iter, err := ex.planAndRun(ctx, stmt)
	if err != nil {
		return sql.Value{}, err
	}
	defer iter.Close(ctx)

	row, err := iter.Next(ctx)
	if err == io.EOF {
		return sql.Null(), nil
	}
	if err != nil {
		return sql.Value{}, err
	}
	if len(row.Columns) == 0 {
		return sql.Null(), nil
	}
	v, err := row.Get(ctx, row.Columns[0])
	if err != nil {
		return sql.Value{}, err
	}

	if _, err := iter.Next(ctx); err != io.EOF {
		if err == nil {
			return sql.Value{}, sql.ErrArgumentValue.New("scalar subquery returned more than one row")
		}
		return sql.Value{}, err
	}
	return v, nil
}
