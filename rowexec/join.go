package rowexec

import (
	"io"

	"github.com/mitchellh/hashstructure"

	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// nullRow builds an all-null row over columns, used to pad the side of an
// outer join that had no matching partner.
func nullRow(columns []string) sql.Row {
	cells := make(map[string]sql.CellFunc, len(columns))
	for _, c := range columns {
		cells[c] = func(ctx *sql.Context) (sql.Value, error) { return sql.Null(), nil }
	}
	return sql.Row{Columns: columns, Cells: cells}
}

// ---- hash join ----

func (ex *Executor) execHashJoin(ctx *sql.Context, n *plan.HashJoin) (sql.RowIter, error) {
	leftIter, err := ex.Execute(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	rightIter, err := ex.Execute(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	defer rightIter.Close(ctx)

	var rightRows []sql.Row
	var rightKeys [][]sql.Value
	buckets := map[uint64][]int{}
	rightColumnsTemplate := n.Right.Schema().Names()

	for {
		row, err := rightIter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			leftIter.Close(ctx)
			return nil, err
		}
		if len(row.Columns) > 0 {
			rightColumnsTemplate = row.Columns
		}
		keys, ok, err := evalJoinKeys(ctx, row, n.Keys, false, ex.Env)
		if err != nil {
			leftIter.Close(ctx)
			return nil, err
		}
		idx := len(rightRows)
		rightRows = append(rightRows, row)
		rightKeys = append(rightKeys, keys)
		if ok {
			h := hashKeys(keys)
			buckets[h] = append(buckets[h], idx)
		}
		if err := ctx.CheckBuildRows("hash join build side", len(rightRows)); err != nil {
			leftIter.Close(ctx)
			return nil, err
		}
	}

	return &hashJoinIter{
		left:                 leftIter,
		kind:                 n.Kind,
		keys:                 n.Keys,
		env:                  ex.Env,
		rightRows:            rightRows,
		rightKeys:            rightKeys,
		buckets:              buckets,
		matched:              make([]bool, len(rightRows)),
		rightColumnsTemplate: rightColumnsTemplate,
		leftColumnsTemplate:  n.Left.Schema().Names(),
	}, nil
}

type hashJoinIter struct {
	left sql.RowIter
	kind plan.JoinKind
	keys []plan.JoinKeyPair
	env  *expression.Env

	rightRows []sql.Row
	rightKeys [][]sql.Value
	buckets   map[uint64][]int
	matched   []bool

	rightColumnsTemplate []string
	leftColumnsTemplate  []string

	pending    []sql.Row
	pendingIdx int
	doneLeft   bool
	rightIdx   int
}

func (it *hashJoinIter) Next(ctx *sql.Context) (sql.Row, error) {
	for {
		if it.pendingIdx < len(it.pending) {
			row := it.pending[it.pendingIdx]
			it.pendingIdx++
			return row, nil
		}

		if !it.doneLeft {
			row, err := it.left.Next(ctx)
			if err == io.EOF {
				it.doneLeft = true
				continue
			}
			if err != nil {
				return sql.Row{}, err
			}
			if len(row.Columns) > 0 {
				it.leftColumnsTemplate = row.Columns
			}

			keys, ok, err := evalJoinKeys(ctx, row, it.keys, true, it.env)
			if err != nil {
				return sql.Row{}, err
			}

			var matches []sql.Row
			if ok {
				for _, idx := range it.buckets[hashKeys(keys)] {
					if !keysEqual(keys, it.rightKeys[idx]) {
						continue
					}
					it.matched[idx] = true
					matches = append(matches, sql.Merge(row, it.rightRows[idx]))
				}
			}

			if len(matches) == 0 {
				if it.kind == plan.JoinLeft || it.kind == plan.JoinFull {
					matches = []sql.Row{sql.Merge(row, nullRow(it.rightColumnsTemplate))}
				} else {
					continue
				}
			}

			it.pending = matches
			it.pendingIdx = 0
			continue
		}

		if it.kind == plan.JoinRight || it.kind == plan.JoinFull {
			for it.rightIdx < len(it.rightRows) {
				idx := it.rightIdx
				it.rightIdx++
				if it.matched[idx] {
					continue
				}
				return sql.Merge(nullRow(it.leftColumnsTemplate), it.rightRows[idx]), nil
			}
		}

		return sql.Row{}, io.EOF
	}
}

func (it *hashJoinIter) Close(ctx *sql.Context) error { return it.left.Close(ctx) }

func evalJoinKeys(ctx *sql.Context, row sql.Row, keys []plan.JoinKeyPair, useLeft bool, env *expression.Env) ([]sql.Value, bool, error) {
	out := make([]sql.Value, len(keys))
	ok := true
	for i, k := range keys {
		node := k.Right
		if useLeft {
			node = k.Left
		}
		v, err := expression.Eval(ctx, row, node, env)
		if err != nil {
			return nil, false, err
		}
		if v.IsNull() {
			ok = false
		}
		out[i] = v
	}
	return out, ok, nil
}

func hashKeys(keys []sql.Value) uint64 {
	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = k.Kind().String() + ":" + k.Text()
	}
	h, _ := hashstructure.Hash(texts, nil)
	return h
}

func keysEqual(a, b []sql.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sql.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ---- nested loop join ----

func (ex *Executor) execNestedLoopJoin(ctx *sql.Context, n *plan.NestedLoopJoin) (sql.RowIter, error) {
	leftRows, leftCols, err := bufferAll(ctx, ex, n.Left)
	if err != nil {
		return nil, err
	}
	rightRows, rightCols, err := bufferAll(ctx, ex, n.Right)
	if err != nil {
		return nil, err
	}

	var out []sql.Row
	rightMatched := make([]bool, len(rightRows))
	for _, lrow := range leftRows {
		matchedAny := false
		for ri, rrow := range rightRows {
			merged := sql.Merge(lrow, rrow)
			keep := true
			if n.On != nil {
				v, err := expression.Eval(ctx, merged, n.On, ex.Env)
				if err != nil {
					return nil, err
				}
				keep = !v.IsNull() && v.Truthy()
			}
			if !keep {
				continue
			}
			matchedAny = true
			rightMatched[ri] = true
			out = append(out, merged)
		}
		if !matchedAny && (n.Kind == plan.JoinLeft || n.Kind == plan.JoinFull) {
			out = append(out, sql.Merge(lrow, nullRow(rightCols)))
		}
	}
	if n.Kind == plan.JoinRight || n.Kind == plan.JoinFull {
		for ri, rrow := range rightRows {
			if !rightMatched[ri] {
				out = append(out, sql.Merge(nullRow(leftCols), rrow))
			}
		}
	}
	return sql.RowsToRowIter(out...), nil
}

// bufferAll executes node and materializes every row, returning a fallback
// column template (the node's static schema) for null-padding when no row
// was ever produced.
func bufferAll(ctx *sql.Context, ex *Executor, node plan.Node) ([]sql.Row, []string, error) {
	iter, err := ex.Execute(ctx, node)
	if err != nil {
		return nil, nil, err
	}
	defer iter.Close(ctx)
	cols := node.Schema().Names()
	var rows []sql.Row
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(row.Columns) > 0 {
			cols = row.Columns
		}
		rows = append(rows, row)
		if err := ctx.CheckBuildRows("join build side", len(rows)); err != nil {
			return nil, nil, err
		}
	}
	return rows, cols, nil
}

// ---- positional join ----

func (ex *Executor) execPositionalJoin(ctx *sql.Context, n *plan.PositionalJoin) (sql.RowIter, error) {
	leftRows, leftCols, err := bufferAll(ctx, ex, n.Left)
	if err != nil {
		return nil, err
	}
	rightRows, rightCols, err := bufferAll(ctx, ex, n.Right)
	if err != nil {
		return nil, err
	}
	max := len(leftRows)
	if len(rightRows) > max {
		max = len(rightRows)
	}
	out := make([]sql.Row, 0, max)
	for i := 0; i < max; i++ {
		lrow := nullRow(leftCols)
		if i < len(leftRows) {
			lrow = leftRows[i]
		}
		rrow := nullRow(rightCols)
		if i < len(rightRows) {
			rrow = rightRows[i]
		}
		out = append(out, sql.Merge(lrow, rrow))
	}
	return sql.RowsToRowIter(out...), nil
}
