package rowexec

import (
	"io"
	"math/rand"
	"sort"

	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// execSort buffers the entire input and orders it one ORDER BY term at a
// time: the first term sorts the whole buffer, and each later term only
// re-sorts the groups of rows the earlier terms left tied, splitting each
// group on the new term's ties. A term's expression is evaluated lazily and
// memoized per (row, term), so rows already fully ordered by earlier terms
// never pay for later terms' expressions. Null ordering honors each key's
// NullsFirst flag independent of ASC/DESC.
func (ex *Executor) execSort(ctx *sql.Context, n *plan.Sort) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	defer child.Close(ctx)

	var rows []sql.Row
	for {
		row, err := child.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if err := ctx.CheckBuildRows("sort", len(rows)); err != nil {
			return nil, err
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}

	vals := make([][]sql.Value, len(rows))
	have := make([][]bool, len(rows))
	for i := range rows {
		vals[i] = make([]sql.Value, len(n.Keys))
		have[i] = make([]bool, len(n.Keys))
	}
	valueFor := func(ri, k int) (sql.Value, error) {
		if !have[ri][k] {
			v, err := expression.Eval(ctx, rows[ri], n.Keys[k].Expr, ex.Env)
			if err != nil {
				return sql.Value{}, err
			}
			vals[ri][k] = v
			have[ri][k] = true
		}
		return vals[ri][k], nil
	}

	// groups holds [lo, hi) ranges of order that are still tied after the
	// terms processed so far; only those rows see the next term at all.
	groups := [][2]int{{0, len(rows)}}
	for k := range n.Keys {
		if len(groups) == 0 {
			break
		}
		key := n.Keys[k]
		var next [][2]int
		for _, g := range groups {
			lo, hi := g[0], g[1]
			for _, ri := range order[lo:hi] {
				if _, err := valueFor(ri, k); err != nil {
					return nil, err
				}
			}
			seg := order[lo:hi]
			sort.SliceStable(seg, func(a, b int) bool {
				return lessByKey(vals[seg[a]][k], vals[seg[b]][k], key)
			})
			start := lo
			for i := lo + 1; i <= hi; i++ {
				if i < hi && sameRank(vals[order[i-1]][k], vals[order[i]][k]) {
					continue
				}
				if i-start > 1 {
					next = append(next, [2]int{start, i})
				}
				start = i
			}
		}
		groups = next
	}

	out := make([]sql.Row, len(rows))
	for i, j := range order {
		out[i] = rows[j]
	}
	return sql.RowsToRowIter(out...), nil
}

// lessByKey orders two already-evaluated key values under one ORDER BY
// term's direction and null placement. Equal values compare false both
// ways, keeping the underlying stable sort's input order for ties.
func lessByKey(av, bv sql.Value, key plan.SortKey) bool {
	if av.IsNull() && bv.IsNull() {
		return false
	}
	if av.IsNull() || bv.IsNull() {
		if key.NullsFirst {
			return av.IsNull()
		}
		return bv.IsNull()
	}
	c := sql.Compare(av, bv)
	if key.Desc {
		return c > 0
	}
	return c < 0
}

// sameRank reports whether two key values tie under any direction (nulls
// tie only with other nulls).
func sameRank(a, b sql.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return sql.Compare(a, b) == 0
}

// execRandomShuffle implements ORDER BY RANDOM()/RAND(): a Fisher-Yates
// shuffle of the fully buffered input.
func (ex *Executor) execRandomShuffle(ctx *sql.Context, n *plan.RandomShuffle) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	defer child.Close(ctx)

	var rows []sql.Row
	for {
		row, err := child.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if err := ctx.CheckBuildRows("random shuffle", len(rows)); err != nil {
			return nil, err
		}
	}
	for i := len(rows) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		rows[i], rows[j] = rows[j], rows[i]
	}
	return sql.RowsToRowIter(rows...), nil
}
