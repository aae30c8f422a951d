package rowexec

import (
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/expression"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// aggGroup accumulates one GROUP BY bucket (or the sole implicit group when
// there is no GROUP BY clause): the group-by key values, the first input
// row seen (the passthrough source for non-aggregated columns), and one
// running aggState per distinct aggregate call.
type aggGroup struct {
	keyValues []sql.Value
	firstRow  sql.Row
	states    []*aggState
}

func (ex *Executor) execAggregate(ctx *sql.Context, n *plan.Aggregate) (sql.RowIter, error) {
	child, err := ex.Execute(ctx, n.Child)
	if err != nil {
		return nil, err
	}
	defer child.Close(ctx)

	buckets := map[uint64][]*aggGroup{}
	var order []*aggGroup

	for {
		row, err := child.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		keyValues := make([]sql.Value, len(n.GroupBy))
		for i, g := range n.GroupBy {
			v, err := expression.Eval(ctx, row, g, ex.Env)
			if err != nil {
				return nil, err
			}
			keyValues[i] = v
		}

		h := hashKeys(keyValues)
		var grp *aggGroup
		for _, cand := range buckets[h] {
			if keysEqual(cand.keyValues, keyValues) {
				grp = cand
				break
			}
		}
		if grp == nil {
			states := make([]*aggState, len(n.Aggregates))
			for i, call := range n.Aggregates {
				states[i] = &aggState{call: call.Call}
			}
			grp = &aggGroup{keyValues: keyValues, firstRow: row, states: states}
			buckets[h] = append(buckets[h], grp)
			order = append(order, grp)
			if err := ctx.CheckBuildRows("aggregate grouping", len(order)); err != nil {
				return nil, err
			}
		}
		for _, st := range grp.states {
			if err := st.accumulate(ctx, row, ex.Env); err != nil {
				return nil, err
			}
		}
	}

	// A query with no GROUP BY still produces exactly one group even over
	// zero input rows (COUNT(*) over an empty table is 0, not absent).
	if len(n.GroupBy) == 0 && len(order) == 0 {
		states := make([]*aggState, len(n.Aggregates))
		for i, call := range n.Aggregates {
			states[i] = &aggState{call: call.Call}
		}
		order = append(order, &aggGroup{firstRow: sql.Row{}, states: states})
	}

	var out []sql.Row
	for _, grp := range order {
		row := grp.firstRow
		for i, g := range n.GroupBy {
			v := grp.keyValues[i]
			name := expression.DefaultAlias(g)
			row = row.WithColumn(name, func(ctx *sql.Context) (sql.Value, error) { return v, nil })
		}
		for i, call := range n.Aggregates {
			st := grp.states[i]
			row = row.WithColumn(call.Alias, func(ctx *sql.Context) (sql.Value, error) { return st.result() })
		}

		if n.Having != nil {
			v, err := expression.Eval(ctx, row, n.Having, ex.Env)
			if err != nil {
				return nil, err
			}
			if v.IsNull() || !v.Truthy() {
				continue
			}
		}
		out = append(out, row)
	}

	return sql.RowsToRowIter(out...), nil
}

// aggState is the running state machine for one aggregate call within one
// group: COUNT(*), COUNT(e), COUNT(DISTINCT e), SUM, AVG,
// MIN, MAX, STDDEV_POP/STDDEV_SAMP via Welford's online algorithm, and
// JSON_ARRAYAGG. FILTER(WHERE ...) gates whether a row contributes at all.
type aggState struct {
	call *ast.FuncCall

	count      int64
	sum        decimal.Decimal
	min, max   sql.Value
	haveMinMax bool

	welfordN    int64
	welfordMean float64
	welfordM2   float64

	arr []interface{}

	seen map[uint64]bool
}

func (s *aggState) accumulate(ctx *sql.Context, row sql.Row, env *expression.Env) error {
	if s.call.Filter != nil {
		v, err := expression.Eval(ctx, row, s.call.Filter, env)
		if err != nil {
			return err
		}
		if v.IsNull() || !v.Truthy() {
			return nil
		}
	}

	name := strings.ToUpper(s.call.Name)

	if name == "COUNT" && s.call.Star {
		s.count++
		return nil
	}

	var arg sql.Value
	if len(s.call.Args) > 0 {
		v, err := expression.Eval(ctx, row, s.call.Args[0], env)
		if err != nil {
			return err
		}
		arg = v
	}

	if name == "JSON_ARRAYAGG" {
		if s.call.Distinct {
			key := hashKeys([]sql.Value{arg})
			if s.seen == nil {
				s.seen = map[uint64]bool{}
			}
			if s.seen[key] {
				return nil
			}
			s.seen[key] = true
		}
		s.arr = append(s.arr, valueToJSON(arg))
		return nil
	}

	if arg.IsNull() {
		return nil
	}

	if s.call.Distinct {
		key := hashKeys([]sql.Value{arg})
		if s.seen == nil {
			s.seen = map[uint64]bool{}
		}
		if s.seen[key] {
			return nil
		}
		s.seen[key] = true
	}

	switch name {
	case "COUNT":
		s.count++
	case "SUM", "AVG":
		d, ok := arg.AsDecimalValue()
		if !ok {
			return nil
		}
		s.sum = s.sum.Add(d)
		s.count++
	case "MIN":
		if !s.haveMinMax || sql.Compare(arg, s.min) < 0 {
			s.min = arg
			s.haveMinMax = true
		}
	case "MAX":
		if !s.haveMinMax || sql.Compare(arg, s.max) > 0 {
			s.max = arg
			s.haveMinMax = true
		}
	case "STDDEV_POP", "STDDEV_SAMP":
		f, ok := arg.Float64()
		if !ok {
			return nil
		}
		s.welfordN++
		delta := f - s.welfordMean
		s.welfordMean += delta / float64(s.welfordN)
		s.welfordM2 += delta * (f - s.welfordMean)
	}
	return nil
}

func (s *aggState) result() (sql.Value, error) {
	name := strings.ToUpper(s.call.Name)
	switch name {
	case "COUNT":
		return sql.Int(s.count), nil
	case "SUM":
		if s.count == 0 {
			return sql.Null(), nil
		}
		return sql.Decimal(s.sum), nil
	case "AVG":
		if s.count == 0 {
			return sql.Null(), nil
		}
		return sql.Decimal(s.sum.Div(decimal.NewFromInt(s.count))), nil
	case "MIN":
		if !s.haveMinMax {
			return sql.Null(), nil
		}
		return s.min, nil
	case "MAX":
		if !s.haveMinMax {
			return sql.Null(), nil
		}
		return s.max, nil
	case "STDDEV_POP":
		if s.welfordN == 0 {
			return sql.Null(), nil
		}
		return sql.Float(math.Sqrt(s.welfordM2 / float64(s.welfordN))), nil
	case "STDDEV_SAMP":
		if s.welfordN < 2 {
			return sql.Null(), nil
		}
		return sql.Float(math.Sqrt(s.welfordM2 / float64(s.welfordN-1))), nil
	case "JSON_ARRAYAGG":
		return sql.JSON(s.arr), nil
	default:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("aggregate " + name)
	}
}

// valueToJSON renders a scalar as the interface{} shape gjson/JSON_ARRAYAGG
// expects: nested JSON values pass through as-is, every other kind widens
// to its natural Go representation.
func valueToJSON(v sql.Value) interface{} {
	switch v.Kind() {
	case sql.KindNull:
		return nil
	case sql.KindBool:
		return v.AsBool()
	case sql.KindInt:
		return v.AsInt()
	case sql.KindFloat:
		return v.AsFloat()
	case sql.KindDecimal:
		f, _ := v.Float64()
		return f
	case sql.KindJSON:
		return v.AsJSON()
	default:
		return v.Text()
	}
}
