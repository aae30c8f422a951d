package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/sql"
)

func TestNewBuiltinsRegistersEveryName(t *testing.T) {
	r := NewBuiltins()

	names := []string{
		"UPPER", "lower", "Concat", "LENGTH", "SUBSTRING", "SUBSTR", "TRIM",
		"REPLACE", "LEFT", "RIGHT", "INSTR", "REGEXP_SUBSTR", "REGEXP_REPLACE",
		"FLOOR", "CEIL", "CEILING", "ROUND", "ABS", "SIGN", "MOD", "EXP", "LN",
		"LOG10", "POWER", "SQRT", "SIN", "COS", "TAN", "COT", "ASIN", "ACOS",
		"ATAN", "ATAN2", "DEGREES", "RADIANS", "PI", "CURRENT_DATE",
		"CURRENT_TIMESTAMP", "RANDOM", "RAND", "JSON_VALUE", "JSON_QUERY",
		"JSON_OBJECT", "JSON_ARRAYAGG", "ST_GEOMFROMTEXT", "ST_MAKEENVELOPE",
		"ST_ASTEXT", "ST_INTERSECTS", "ST_CONTAINS", "ST_CONTAINSPROPERLY",
		"ST_WITHIN", "ST_OVERLAPS", "ST_TOUCHES", "ST_EQUALS", "ST_CROSSES",
		"ST_COVERS", "ST_COVEREDBY", "ST_DWITHIN", "ST_DISTANCE", "ST_AREA",
		"ST_LENGTH", "ST_BUFFER", "COALESCE", "NULLIF", "GREATEST", "LEAST",
		"COUNT", "SUM", "AVG", "MIN", "MAX", "STDDEV_POP", "STDDEV_SAMP",
	}
	for _, n := range names {
		desc, ok := r.Lookup(n)
		require.Truef(t, ok, "expected %s to be registered", n)
		assert.Equal(t, sql.NormalizeIdent(n), sql.NormalizeIdent(desc.Name))
	}
}

func TestBuiltinsAggregateEntriesHaveNoFn(t *testing.T) {
	r := NewBuiltins()
	for _, n := range []string{"COUNT", "SUM", "AVG", "MIN", "MAX", "STDDEV_POP", "STDDEV_SAMP", "JSON_ARRAYAGG"} {
		desc, ok := r.Lookup(n)
		require.True(t, ok)
		assert.True(t, desc.IsAggregate, n)
		assert.Nil(t, desc.Fn, n)
	}
}

func TestBuiltinsCountAcceptsStar(t *testing.T) {
	r := NewBuiltins()
	desc, ok := r.Lookup("COUNT")
	require.True(t, ok)
	assert.True(t, desc.Arity.AcceptsStar)
	assert.True(t, desc.Arity.Accepts(0))
	assert.True(t, desc.Arity.Accepts(1))
	assert.False(t, desc.Arity.Accepts(2))
}

func TestBuiltinsSubstringArityRange(t *testing.T) {
	r := NewBuiltins()
	desc, ok := r.Lookup("SUBSTRING")
	require.True(t, ok)
	assert.True(t, desc.Arity.Accepts(2))
	assert.True(t, desc.Arity.Accepts(3))
	assert.False(t, desc.Arity.Accepts(1))
	assert.False(t, desc.Arity.Accepts(4))
}
