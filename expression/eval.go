package expression

import (
	"math"

	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// Eval evaluates node against row, returning the row's 1-based ordinal
// decoration on any error that surfaces from it.
func Eval(ctx *sql.Context, row sql.Row, node ast.ExprNode, env *Env) (sql.Value, error) {
	v, err := evalNode(ctx, row, node, env)
	if err != nil {
		if ord, ok := row.RowOrdinal(); ok {
			return sql.Value{}, sql.WrapRow(err, ord)
		}
		return sql.Value{}, err
	}
	return v, nil
}

// Compiled adapts an (ast.ExprNode, Env) pair to sql.Expr, so a predicate
// can be handed to a DataSource as a ScanHints.Where pushdown hint.
type Compiled struct {
	Node ast.ExprNode
	Env  *Env
}

func (c Compiled) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return Eval(ctx, row, c.Node, c.Env)
}

func evalNode(ctx *sql.Context, row sql.Row, node ast.ExprNode, env *Env) (sql.Value, error) {
	switch e := node.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Identifier:
		key := e.Name
		if e.Qualifier != "" {
			key = e.Qualifier + "." + e.Name
		}
		if row.Has(key) {
			return row.Get(ctx, key)
		}
		if row.Has(e.Name) {
			return row.Get(ctx, e.Name)
		}
		return sql.Null(), sql.ErrUnknownColumn.New(key)

	case *ast.Star:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("'*' cannot be evaluated as a scalar expression")

	case *ast.UnaryExpr:
		return evalUnary(ctx, row, e, env)

	case *ast.BinaryExpr:
		return evalBinary(ctx, row, e, env)

	case *ast.FuncCall:
		return evalFuncCall(ctx, row, e, env)

	case *ast.Cast:
		v, err := evalNode(ctx, row, e.Expr, env)
		if err != nil {
			return sql.Value{}, err
		}
		return CastValue(v, e.Target)

	case *ast.CaseExpr:
		return evalCase(ctx, row, e, env)

	case *ast.Between:
		return evalBetween(ctx, row, e, env)

	case *ast.InExpr:
		return evalIn(ctx, row, e, env)

	case *ast.ExistsExpr:
		if env.EvalExists == nil {
			return sql.Value{}, sql.ErrUnsupportedFeature.New("EXISTS is not available in this context")
		}
		found, err := env.EvalExists(ctx, e.Subquery)
		if err != nil {
			return sql.Value{}, err
		}
		if e.Negated {
			found = !found
		}
		return sql.Bool(found), nil

	case *ast.IsNullExpr:
		v, err := evalNode(ctx, row, e.Expr, env)
		if err != nil {
			return sql.Value{}, err
		}
		result := v.IsNull()
		if e.Negated {
			result = !result
		}
		return sql.Bool(result), nil

	case *ast.LikeExpr:
		return evalLike(ctx, row, e, env)

	case *ast.Subquery:
		if env.EvalScalarSubquery == nil {
			return sql.Value{}, sql.ErrUnsupportedFeature.New("scalar subqueries are not available in this context")
		}
		return env.EvalScalarSubquery(ctx, e.Select)

	case *ast.Interval:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("INTERVAL may only appear as the right-hand operand of + or - against a date or timestamp")

	default:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("unsupported expression node")
	}
}

func evalUnary(ctx *sql.Context, row sql.Row, e *ast.UnaryExpr, env *Env) (sql.Value, error) {
	switch e.Op {
	case "-":
		v, err := evalNode(ctx, row, e.Operand, env)
		if err != nil {
			return sql.Value{}, err
		}
		if v.IsNull() {
			return sql.Null(), nil
		}
		if !v.IsNumeric() {
			return sql.Value{}, sql.ErrArgumentValue.New("unary - requires a numeric operand")
		}
		switch v.Kind() {
		case sql.KindInt:
			return sql.Int(-v.AsInt()), nil
		case sql.KindDecimal:
			return sql.Decimal(v.AsDecimal().Neg()), nil
		default:
			f, _ := v.Float64()
			return sql.Float(-f), nil
		}
	case "NOT":
		v, err := evalNode(ctx, row, e.Operand, env)
		if err != nil {
			return sql.Value{}, err
		}
		tri := toTri(v)
		if tri == nil {
			return sql.Null(), nil
		}
		return sql.Bool(!*tri), nil
	default:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("unary operator " + e.Op)
	}
}

func toTri(v sql.Value) *bool {
	if v.IsNull() {
		return nil
	}
	b := v.Truthy()
	return &b
}

func evalBinary(ctx *sql.Context, row sql.Row, e *ast.BinaryExpr, env *Env) (sql.Value, error) {
	switch e.Op {
	case "AND":
		lv, err := evalNode(ctx, row, e.Left, env)
		if err != nil {
			return sql.Value{}, err
		}
		lt := toTri(lv)
		if lt != nil && !*lt {
			return sql.Bool(false), nil
		}
		rv, err := evalNode(ctx, row, e.Right, env)
		if err != nil {
			return sql.Value{}, err
		}
		rt := toTri(rv)
		if rt != nil && !*rt {
			return sql.Bool(false), nil
		}
		if lt != nil && rt != nil {
			return sql.Bool(true), nil
		}
		return sql.Null(), nil

	case "OR":
		lv, err := evalNode(ctx, row, e.Left, env)
		if err != nil {
			return sql.Value{}, err
		}
		lt := toTri(lv)
		if lt != nil && *lt {
			return sql.Bool(true), nil
		}
		rv, err := evalNode(ctx, row, e.Right, env)
		if err != nil {
			return sql.Value{}, err
		}
		rt := toTri(rv)
		if rt != nil && *rt {
			return sql.Bool(true), nil
		}
		if lt != nil && rt != nil {
			return sql.Bool(false), nil
		}
		return sql.Null(), nil
	}

	if e.Op == "+" || e.Op == "-" {
		if interval, ok := e.Right.(*ast.Interval); ok {
			base, err := evalNode(ctx, row, e.Left, env)
			if err != nil {
				return sql.Value{}, err
			}
			amountV, err := evalNode(ctx, row, interval.Value, env)
			if err != nil {
				return sql.Value{}, err
			}
			amount, _ := amountV.Float64()
			sign := 1
			if e.Op == "-" {
				sign = -1
			}
			return ApplyInterval(base, sign, amount, interval.Unit)
		}
	}

	lv, err := evalNode(ctx, row, e.Left, env)
	if err != nil {
		return sql.Value{}, err
	}
	rv, err := evalNode(ctx, row, e.Right, env)
	if err != nil {
		return sql.Value{}, err
	}

	switch e.Op {
	case "+", "-", "*", "/", "%":
		return evalArith(e.Op, lv, rv)
	case "=", "!=", "<", "<=", ">", ">=":
		return evalCompare(e.Op, lv, rv), nil
	case "||":
		if lv.IsNull() || rv.IsNull() {
			return sql.Null(), nil
		}
		return sql.String(lv.Text() + rv.Text()), nil
	default:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("operator " + e.Op)
	}
}

func evalCompare(op string, a, b sql.Value) sql.Value {
	if a.IsNull() || b.IsNull() {
		return sql.Null()
	}
	c := sql.Compare(a, b)
	switch op {
	case "=":
		return sql.Bool(c == 0)
	case "!=":
		return sql.Bool(c != 0)
	case "<":
		return sql.Bool(c < 0)
	case "<=":
		return sql.Bool(c <= 0)
	case ">":
		return sql.Bool(c > 0)
	case ">=":
		return sql.Bool(c >= 0)
	}
	return sql.Null()
}

func evalArith(op string, a, b sql.Value) (sql.Value, error) {
	if a.IsNull() || b.IsNull() {
		return sql.Null(), nil
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return sql.Value{}, sql.ErrArgumentValue.New("arithmetic operator " + op + " requires numeric operands")
	}

	if a.Kind() == sql.KindDecimal || b.Kind() == sql.KindDecimal {
		ad, _ := a.AsDecimalValue()
		bd, _ := b.AsDecimalValue()
		switch op {
		case "+":
			return sql.Decimal(ad.Add(bd)), nil
		case "-":
			return sql.Decimal(ad.Sub(bd)), nil
		case "*":
			return sql.Decimal(ad.Mul(bd)), nil
		case "/":
			if bd.IsZero() {
				return sql.Null(), nil
			}
			return sql.Decimal(ad.Div(bd)), nil
		case "%":
			if bd.IsZero() {
				return sql.Null(), nil
			}
			return sql.Decimal(ad.Mod(bd)), nil
		}
	}

	if a.Kind() == sql.KindInt && b.Kind() == sql.KindInt {
		ai, bi := a.AsInt(), b.AsInt()
		switch op {
		case "+":
			return sql.Int(ai + bi), nil
		case "-":
			return sql.Int(ai - bi), nil
		case "*":
			return sql.Int(ai * bi), nil
		case "/":
			if bi == 0 {
				return sql.Null(), nil
			}
			if ai%bi == 0 {
				return sql.Int(ai / bi), nil
			}
			return sql.Float(float64(ai) / float64(bi)), nil
		case "%":
			if bi == 0 {
				return sql.Null(), nil
			}
			return sql.Int(ai % bi), nil
		}
	}

	af, _ := a.Float64()
	bf, _ := b.Float64()
	switch op {
	case "+":
		return sql.Float(af + bf), nil
	case "-":
		return sql.Float(af - bf), nil
	case "*":
		return sql.Float(af * bf), nil
	case "/":
		if bf == 0 {
			return sql.Null(), nil
		}
		return sql.Float(af / bf), nil
	case "%":
		if bf == 0 {
			return sql.Null(), nil
		}
		return sql.Float(math.Mod(af, bf)), nil
	}
	return sql.Value{}, sql.ErrUnsupportedFeature.New("operator " + op)
}

func evalCase(ctx *sql.Context, row sql.Row, e *ast.CaseExpr, env *Env) (sql.Value, error) {
	var operand sql.Value
	simple := e.Operand != nil
	if simple {
		v, err := evalNode(ctx, row, e.Operand, env)
		if err != nil {
			return sql.Value{}, err
		}
		operand = v
	}
	for _, when := range e.Whens {
		if simple {
			cv, err := evalNode(ctx, row, when.Cond, env)
			if err != nil {
				return sql.Value{}, err
			}
			if cv.IsNull() || operand.IsNull() {
				continue
			}
			if sql.Compare(operand, cv) != 0 {
				continue
			}
			return evalNode(ctx, row, when.Result, env)
		}
		cv, err := evalNode(ctx, row, when.Cond, env)
		if err != nil {
			return sql.Value{}, err
		}
		tri := toTri(cv)
		if tri != nil && *tri {
			return evalNode(ctx, row, when.Result, env)
		}
	}
	if e.Else != nil {
		return evalNode(ctx, row, e.Else, env)
	}
	return sql.Null(), nil
}

func evalBetween(ctx *sql.Context, row sql.Row, e *ast.Between, env *Env) (sql.Value, error) {
	v, err := evalNode(ctx, row, e.Expr, env)
	if err != nil {
		return sql.Value{}, err
	}
	lo, err := evalNode(ctx, row, e.Low, env)
	if err != nil {
		return sql.Value{}, err
	}
	hi, err := evalNode(ctx, row, e.High, env)
	if err != nil {
		return sql.Value{}, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return sql.Null(), nil
	}
	result := sql.Compare(v, lo) >= 0 && sql.Compare(v, hi) <= 0
	if e.Negated {
		result = !result
	}
	return sql.Bool(result), nil
}

func evalIn(ctx *sql.Context, row sql.Row, e *ast.InExpr, env *Env) (sql.Value, error) {
	v, err := evalNode(ctx, row, e.Expr, env)
	if err != nil {
		return sql.Value{}, err
	}

	var candidates []sql.Value
	if e.Subquery != nil {
		if env.EvalInSubquery == nil {
			return sql.Value{}, sql.ErrUnsupportedFeature.New("IN (SELECT ...) is not available in this context")
		}
		candidates, err = env.EvalInSubquery(ctx, e.Subquery)
		if err != nil {
			return sql.Value{}, err
		}
	} else {
		for _, item := range e.List {
			cv, err := evalNode(ctx, row, item, env)
			if err != nil {
				return sql.Value{}, err
			}
			candidates = append(candidates, cv)
		}
	}

	if v.IsNull() {
		return sql.Null(), nil
	}

	sawNull := false
	matched := false
	for _, c := range candidates {
		if c.IsNull() {
			sawNull = true
			continue
		}
		if sql.Equal(v, c) {
			matched = true
			break
		}
	}

	if matched {
		return sql.Bool(!e.Negated), nil
	}
	if sawNull {
		return sql.Null(), nil
	}
	return sql.Bool(e.Negated), nil
}

func evalLike(ctx *sql.Context, row sql.Row, e *ast.LikeExpr, env *Env) (sql.Value, error) {
	v, err := evalNode(ctx, row, e.Expr, env)
	if err != nil {
		return sql.Value{}, err
	}
	p, err := evalNode(ctx, row, e.Pattern, env)
	if err != nil {
		return sql.Value{}, err
	}
	if v.IsNull() || p.IsNull() {
		return sql.Null(), nil
	}
	re, err := likeToRegex(p.Text())
	if err != nil {
		return sql.Value{}, sql.ErrArgumentValue.New("invalid LIKE pattern: " + err.Error())
	}
	result := re.MatchString(v.Text())
	if e.Negated {
		result = !result
	}
	return sql.Bool(result), nil
}

func evalFuncCall(ctx *sql.Context, row sql.Row, e *ast.FuncCall, env *Env) (sql.Value, error) {
	if env.Functions == nil {
		return sql.Value{}, sql.ErrUnknownFunction.New(e.Name)
	}
	desc, ok := env.Functions.Lookup(e.Name)
	if !ok {
		return sql.Value{}, sql.ErrUnknownFunction.New(e.Name)
	}
	if desc.IsAggregate {
		key := DefaultAlias(e)
		if row.Has(key) {
			return row.Get(ctx, key)
		}
		return sql.Value{}, sql.ErrUnsupportedFeature.New(e.Name + " is only valid in a projection, HAVING, or ORDER BY of an aggregated query")
	}

	args := make([]sql.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := evalNode(ctx, row, a, env)
		if err != nil {
			return sql.Value{}, err
		}
		args[i] = v
	}
	if !desc.Arity.Accepts(len(args)) {
		return sql.Value{}, sql.ErrArgumentArity.New(e.Name, desc.Arity.Describe(), len(args))
	}
	return desc.Fn(ctx, args)
}
