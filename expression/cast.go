package expression

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/gabereiser/lazysql/sql"
)

// CastValue implements CAST(expr AS target) for the TEXT/VARCHAR,
// INTEGER/INT/BIGINT, FLOAT/REAL/DOUBLE, BOOLEAN, and DECIMAL targets.
// Coercion itself is delegated to
// github.com/spf13/cast, which already implements the permissive
// string<->numeric<->bool coercion rules this needs; only the sql.Value
// wrapping and error shape are specific to this engine.
func CastValue(v sql.Value, target string) (sql.Value, error) {
	if v.IsNull() {
		return sql.Null(), nil
	}
	switch target {
	case "TEXT", "VARCHAR":
		return sql.String(v.Text()), nil
	case "INTEGER", "INT", "BIGINT":
		n, err := cast.ToInt64E(castSource(v))
		if err != nil {
			return sql.Value{}, sql.ErrCast.New(v.Kind().String(), target, err.Error())
		}
		return sql.Int(n), nil
	case "FLOAT", "REAL", "DOUBLE":
		f, err := cast.ToFloat64E(castSource(v))
		if err != nil {
			return sql.Value{}, sql.ErrCast.New(v.Kind().String(), target, err.Error())
		}
		return sql.Float(f), nil
	case "BOOLEAN":
		b, err := cast.ToBoolE(castSource(v))
		if err != nil {
			return sql.Value{}, sql.ErrCast.New(v.Kind().String(), target, err.Error())
		}
		return sql.Bool(b), nil
	case "DECIMAL":
		if v.IsNumeric() {
			d, _ := v.AsDecimalValue()
			return sql.Decimal(d), nil
		}
		d, err := decimal.NewFromString(v.Text())
		if err != nil {
			return sql.Value{}, sql.ErrCast.New(v.Kind().String(), target, err.Error())
		}
		return sql.Decimal(d), nil
	default:
		return sql.Value{}, sql.ErrCast.New(v.Kind().String(), target, "unsupported cast target")
	}
}

// castSource picks the Go value cast.ToXE should coerce from: numeric kinds
// pass their native representation so cast doesn't round-trip through a
// formatted string, everything else passes the textual form.
func castSource(v sql.Value) interface{} {
	switch v.Kind() {
	case sql.KindInt:
		return v.AsInt()
	case sql.KindFloat:
		return v.AsFloat()
	case sql.KindDecimal:
		f, _ := v.AsDecimal().Float64()
		return f
	case sql.KindBool:
		return v.AsBool()
	default:
		return v.Text()
	}
}
