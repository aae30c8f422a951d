package function

import (
	"math"

	"github.com/gabereiser/lazysql/sql"
)

func numericArg(v sql.Value) (float64, bool) {
	return v.Float64()
}

func fnFloor(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	f, ok := numericArg(args[0])
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("FLOOR requires a numeric argument")
	}
	return sql.Float(math.Floor(f)), nil
}

func fnCeil(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	f, ok := numericArg(args[0])
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("CEIL requires a numeric argument")
	}
	return sql.Float(math.Ceil(f)), nil
}

func fnRound(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	f, ok := numericArg(args[0])
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("ROUND requires a numeric argument")
	}
	places := 0.0
	if len(args) == 2 && !args[1].IsNull() {
		places, _ = numericArg(args[1])
	}
	mult := math.Pow(10, places)
	return sql.Float(math.Round(f*mult) / mult), nil
}

func fnAbs(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	if args[0].Kind() == sql.KindInt {
		n := args[0].AsInt()
		if n < 0 {
			n = -n
		}
		return sql.Int(n), nil
	}
	f, ok := numericArg(args[0])
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("ABS requires a numeric argument")
	}
	return sql.Float(math.Abs(f)), nil
}

func fnSign(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	f, ok := numericArg(args[0])
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("SIGN requires a numeric argument")
	}
	switch {
	case f > 0:
		return sql.Int(1), nil
	case f < 0:
		return sql.Int(-1), nil
	default:
		return sql.Int(0), nil
	}
}

func fnMod(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	a, _ := numericArg(args[0])
	b, _ := numericArg(args[1])
	if b == 0 {
		return sql.Null(), nil
	}
	return sql.Float(math.Mod(a, b)), nil
}

func unaryMath(f func(float64) float64, name string) sql.UDF {
	return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		if args[0].IsNull() {
			return sql.Null(), nil
		}
		x, ok := numericArg(args[0])
		if !ok {
			return sql.Value{}, sql.ErrArgumentValue.New(name + " requires a numeric argument")
		}
		return sql.Float(f(x)), nil
	}
}

func fnPower(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	base, _ := numericArg(args[0])
	exp, _ := numericArg(args[1])
	return sql.Float(math.Pow(base, exp)), nil
}

func fnPi(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return sql.Float(math.Pi), nil
}

func fnAtan(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	y, _ := numericArg(args[0])
	if len(args) == 2 {
		if args[1].IsNull() {
			return sql.Null(), nil
		}
		x, _ := numericArg(args[1])
		return sql.Float(math.Atan2(y, x)), nil
	}
	return sql.Float(math.Atan(y)), nil
}

func fnAtan2(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	y, _ := numericArg(args[0])
	x, _ := numericArg(args[1])
	return sql.Float(math.Atan2(y, x)), nil
}

func fnCot(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	x, _ := numericArg(args[0])
	return sql.Float(1 / math.Tan(x)), nil
}
