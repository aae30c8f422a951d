package rowexec

import (
	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

func (ex *Executor) execProject(ctx *sql.Context, n *plan.Project) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	return &projectIter{
		inner:      child,
		columns:    n.Columns,
		childNames: n.Child.Schema().Names(),
		env:        ex.Env,
	}, nil
}

// projectIter builds one output row per input row with lazily-evaluated
// cells: an expression is not evaluated until a downstream
// consumer actually reads its column.
type projectIter struct {
	inner      sql.RowIter
	columns    []plan.ProjectedColumn
	childNames []string
	env        *expression.Env
}

func (it *projectIter) Next(ctx *sql.Context) (sql.Row, error) {
	row, err := it.inner.Next(ctx)
	if err != nil {
		return sql.Row{}, err
	}

	var cols []string
	seen := map[string]bool{}
	cells := map[string]sql.CellFunc{}

	for _, c := range it.columns {
		if c.Star {
			for _, name := range starNames(row, c.Qual, it.childNames) {
				if seen[name] {
					continue
				}
				seen[name] = true
				cols = append(cols, name)
				key := name
				if c.Qual != "" {
					key = c.Qual + "." + name
				}
				cells[name] = func(ctx *sql.Context) (sql.Value, error) {
					return row.Get(ctx, key)
				}
			}
			continue
		}
		name := c.Name
		expr := c.Expr
		if !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
		cells[name] = func(ctx *sql.Context) (sql.Value, error) {
			return expression.Eval(ctx, row, expr, it.env)
		}
	}

	out := sql.Row{Columns: cols, Cells: cells}
	if ord, ok := row.RowOrdinal(); ok {
		out = out.WithOrdinal(ord)
	}
	return out, nil
}

func (it *projectIter) Close(ctx *sql.Context) error { return it.inner.Close(ctx) }
