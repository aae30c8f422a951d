// Package sql defines the core data model and contracts of the query engine:
// the tagged scalar value, the lazy row/cell abstraction, the data-source
// contract, the function-registry contract, and the typed error taxonomy.
package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags the variant a Value holds: null, bool, int64,
// arbitrary-precision decimal, float64,
// string, date/time string, nested JSON, and geometry.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindFloat
	KindString
	KindDateTime
	KindJSON
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindJSON:
		return "json"
	case KindGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar. The zero
// Value is null. Values are immutable and safe to share across rows.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    decimal.Decimal
	f    float64
	s    string
	j    interface{}
	geom interface{}
}

func Null() Value                    { return Value{kind: KindNull} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func String(s string) Value          { return Value{kind: KindString, s: s} }
func DateTime(s string) Value        { return Value{kind: KindDateTime, s: s} }
func JSON(v interface{}) Value       { return Value{kind: KindJSON, j: v} }
func Geometry(g interface{}) Value   { return Value{kind: KindGeometry, geom: g} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() bool            { return v.b }
func (v Value) AsInt() int64            { return v.i }
func (v Value) AsDecimal() decimal.Decimal { return v.d }
func (v Value) AsFloat() float64        { return v.f }
func (v Value) AsString() string        { return v.s }
func (v Value) AsJSON() interface{}     { return v.j }
func (v Value) AsGeometry() interface{} { return v.geom }

// IsNumeric reports whether the value participates in numeric comparison
// and arithmetic.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindInt, KindDecimal, KindFloat:
		return true
	default:
		return false
	}
}

// Float64 widens any numeric kind to a float64 for arithmetic that does not
// need decimal precision. Non-numeric kinds return (0, false).
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindDecimal:
		f, _ := v.d.Float64()
		return f, true
	default:
		return 0, false
	}
}

// AsDecimalValue widens any numeric kind to decimal.Decimal, used by
// SUM/AVG/CAST to avoid float drift.
func (v Value) AsDecimalValue() (decimal.Decimal, bool) {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i), true
	case KindFloat:
		return decimal.NewFromFloat(v.f), true
	case KindDecimal:
		return v.d, true
	default:
		return decimal.Zero, false
	}
}

// Truthy implements the engine's notion of a "truthy non-null value" used by
// WHERE/HAVING/FILTER predicates. Bool values use their literal value;
// numeric values are truthy iff non-zero; every other non-null kind (string,
// datetime, json, geometry) is truthy. Callers must check IsNull separately:
// null is neither truthy nor falsy, it is unknown (SQL three-valued logic).
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindDecimal:
		return !v.d.IsZero()
	default:
		return true
	}
}

// Text renders a value's textual form, used for default-alias synthesis,
// Distinct/group-key hashing, and string-ordering fallback comparisons.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDecimal:
		return v.d.String()
	case KindString, KindDateTime:
		return v.s
	case KindJSON:
		return fmt.Sprintf("%v", v.j)
	case KindGeometry:
		return fmt.Sprintf("%v", v.geom)
	default:
		return ""
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("Value(%s: %s)", v.kind, v.Text())
}

// Compare orders two non-null values. Numeric kinds compare numerically
// regardless of which numeric kind each side holds; any other pairing,
// including a numeric value against a non-numeric one, falls back to
// lexicographic comparison of their textual form. Callers handle null
// ordering (null sorts low by default) separately.
func Compare(a, b Value) int {
	if a.IsNumeric() && b.IsNumeric() {
		ad, _ := a.AsDecimalValue()
		bd, _ := b.AsDecimalValue()
		return ad.Cmp(bd)
	}
	return strings.Compare(a.Text(), b.Text())
}

// Equal is Compare(a, b) == 0 with null handled by the caller.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}
