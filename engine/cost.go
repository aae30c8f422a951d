package engine

import (
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// defaultRowEstimate is the row-count guess used for a Scan whose source
// exposes no sql.StatisticsSource (or no NumRows), and for any node kind
// EstimateCost does not recognize. It is not a floor: an estimate may be
// zero.
const defaultRowEstimate = 1000.0

// EstimateCost produces a relative, dimensionless cost figure for node: a
// rough proxy for "rows processed end to end", not a calibrated time or
// byte estimate. It is informational only — the planner never consults it
// to choose between alternative plans, since Builder produces exactly one
// plan shape per statement.
// A host can use it to reject or log unexpectedly expensive queries before
// running them.
func EstimateCost(ctx *sql.Context, node plan.Node) (float64, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return scanCost(ctx, n)
	case *plan.Filter:
		c, err := EstimateCost(ctx, n.Child)
		if err != nil {
			return 0, err
		}
		return c + c*0.3, nil
	case *plan.Project:
		return EstimateCost(ctx, n.Child)
	case *plan.Aggregate:
		c, err := EstimateCost(ctx, n.Child)
		if err != nil {
			return 0, err
		}
		return c * 1.5, nil
	case *plan.Sort:
		c, err := EstimateCost(ctx, n.Child)
		if err != nil {
			return 0, err
		}
		return c * logCost(c), nil
	case *plan.RandomShuffle:
		return EstimateCost(ctx, n.Child)
	case *plan.Distinct:
		c, err := EstimateCost(ctx, n.Child)
		if err != nil {
			return 0, err
		}
		return c * 1.2, nil
	case *plan.LimitOffset:
		c, err := EstimateCost(ctx, n.Child)
		if err != nil {
			return 0, err
		}
		if n.Limit != nil && float64(*n.Limit) < c {
			return float64(*n.Limit), nil
		}
		return c, nil
	case *plan.HashJoin:
		l, err := EstimateCost(ctx, n.Left)
		if err != nil {
			return 0, err
		}
		r, err := EstimateCost(ctx, n.Right)
		if err != nil {
			return 0, err
		}
		return l + r, nil
	case *plan.NestedLoopJoin:
		l, err := EstimateCost(ctx, n.Left)
		if err != nil {
			return 0, err
		}
		r, err := EstimateCost(ctx, n.Right)
		if err != nil {
			return 0, err
		}
		return l * r, nil
	case *plan.PositionalJoin:
		l, err := EstimateCost(ctx, n.Left)
		if err != nil {
			return 0, err
		}
		r, err := EstimateCost(ctx, n.Right)
		if err != nil {
			return 0, err
		}
		if l > r {
			return l, nil
		}
		return r, nil
	case *plan.SubqueryAlias:
		return EstimateCost(ctx, n.Child)
	case *plan.CTERef:
		child, err := n.Rebuild()
		if err != nil {
			return 0, err
		}
		return EstimateCost(ctx, child)
	case *plan.SetOp:
		l, err := EstimateCost(ctx, n.Left)
		if err != nil {
			return 0, err
		}
		r, err := EstimateCost(ctx, n.Right)
		if err != nil {
			return 0, err
		}
		return l + r, nil
	default:
		return defaultRowEstimate, nil
	}
}

func scanCost(ctx *sql.Context, n *plan.Scan) (float64, error) {
	if statSrc, ok := n.Source.(sql.StatisticsSource); ok {
		stats, err := statSrc.Statistics(ctx)
		if err != nil {
			return 0, err
		}
		if stats != nil && stats.NumRows != nil {
			rows := float64(*stats.NumRows)
			weight := columnWeight(n, stats)
			if n.Hints.Limit != nil && float64(*n.Hints.Limit) < rows {
				rows = float64(*n.Hints.Limit)
			}
			return rows * weight, nil
		}
	}
	return defaultRowEstimate, nil
}

// columnWeight averages the per-column weight the source reports across the
// columns this Scan actually requests, defaulting absent entries to 1. A
// Scan with no column hint averages over every column of its schema. A
// source with no ColumnWeights at all costs 1 per row.
func columnWeight(n *plan.Scan, stats *sql.SourceStatistics) float64 {
	if len(stats.ColumnWeights) == 0 {
		return 1
	}
	cols := n.Hints.Columns
	if len(cols) == 0 {
		cols = n.Sch.Names()
	}
	if len(cols) == 0 {
		return 1
	}
	var total float64
	for _, c := range cols {
		if w, ok := stats.ColumnWeights[c]; ok {
			total += w
		} else {
			total += 1
		}
	}
	return total / float64(len(cols))
}

// logCost approximates log2(n), rounded up (1 for n <= 1), without
// importing math for a single call site; the Sort case multiplies it by n.
func logCost(n float64) float64 {
	if n <= 1 {
		return 1
	}
	bits := 0.0
	for v := n; v > 1; v /= 2 {
		bits++
	}
	return bits
}
