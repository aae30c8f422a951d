// Package function is the built-in scalar/aggregate function catalog:
// string, regex, math, trig, date, JSON, spatial, and control-flow
// functions. Aggregate entries carry no Fn: the Aggregate operator
// in rowexec computes their state machine directly, and
// expression.Eval resolves an aggregate FuncCall to the operator's
// already-stored result rather than calling Fn.
package function

import (
	"github.com/gabereiser/lazysql/sql"
	"github.com/gabereiser/lazysql/sql/geo"
)

// NewBuiltins constructs the process-wide built-in function registry.
// Safe for concurrent read once built ("the built-in function
// registry" is one of the two process-wide, initialize-once caches).
func NewBuiltins() *sql.FunctionRegistry {
	r := sql.NewFunctionRegistry()

	reg := func(name string, arity sql.Arity, fn sql.UDF) {
		r.Register(&sql.FunctionDescriptor{Name: name, Arity: arity, Fn: fn})
	}
	regAgg := func(name string, arity sql.Arity) {
		r.Register(&sql.FunctionDescriptor{Name: name, Arity: arity, IsAggregate: true})
	}

	// string
	reg("UPPER", sql.FixedArity(1), fnUpper)
	reg("LOWER", sql.FixedArity(1), fnLower)
	reg("CONCAT", sql.AtLeastArity(1), fnConcat)
	reg("LENGTH", sql.FixedArity(1), fnLength)
	reg("SUBSTRING", sql.RangeArity(2, 3), fnSubstring)
	reg("SUBSTR", sql.RangeArity(2, 3), fnSubstring)
	reg("TRIM", sql.FixedArity(1), fnTrim)
	reg("REPLACE", sql.FixedArity(3), fnReplace)
	reg("LEFT", sql.FixedArity(2), fnLeft)
	reg("RIGHT", sql.FixedArity(2), fnRight)
	reg("INSTR", sql.FixedArity(2), fnInstr)

	// regex
	reg("REGEXP_SUBSTR", sql.RangeArity(2, 4), fnRegexpSubstr)
	reg("REGEXP_REPLACE", sql.RangeArity(3, 5), fnRegexpReplace)

	// math
	reg("FLOOR", sql.FixedArity(1), fnFloor)
	reg("CEIL", sql.FixedArity(1), fnCeil)
	reg("CEILING", sql.FixedArity(1), fnCeil)
	reg("ROUND", sql.RangeArity(1, 2), fnRound)
	reg("ABS", sql.FixedArity(1), fnAbs)
	reg("SIGN", sql.FixedArity(1), fnSign)
	reg("MOD", sql.FixedArity(2), fnMod)
	reg("EXP", sql.FixedArity(1), fnExp)
	reg("LN", sql.FixedArity(1), fnLn)
	reg("LOG10", sql.FixedArity(1), fnLog10)
	reg("POWER", sql.FixedArity(2), fnPower)
	reg("SQRT", sql.FixedArity(1), fnSqrt)

	// trig
	reg("SIN", sql.FixedArity(1), fnSin)
	reg("COS", sql.FixedArity(1), fnCos)
	reg("TAN", sql.FixedArity(1), fnTan)
	reg("COT", sql.FixedArity(1), fnCot)
	reg("ASIN", sql.FixedArity(1), fnAsin)
	reg("ACOS", sql.FixedArity(1), fnAcos)
	reg("ATAN", sql.RangeArity(1, 2), fnAtan)
	reg("ATAN2", sql.FixedArity(2), fnAtan2)
	reg("DEGREES", sql.FixedArity(1), fnDegrees)
	reg("RADIANS", sql.FixedArity(1), fnRadians)
	reg("PI", sql.FixedArity(0), fnPi)

	// date
	reg("CURRENT_DATE", sql.FixedArity(0), fnCurrentDate)
	reg("CURRENT_TIMESTAMP", sql.FixedArity(0), fnCurrentTimestamp)
	reg("RANDOM", sql.FixedArity(0), fnRandom)
	reg("RAND", sql.FixedArity(0), fnRandom)

	// JSON
	reg("JSON_VALUE", sql.FixedArity(2), fnJSONValue)
	reg("JSON_QUERY", sql.FixedArity(2), fnJSONQuery)
	reg("JSON_OBJECT", sql.AtLeastArity(0), fnJSONObject)
	regAgg("JSON_ARRAYAGG", sql.FixedArity(1))

	// spatial
	reg("ST_GEOMFROMTEXT", sql.FixedArity(1), fnSTGeomFromText)
	reg("ST_MAKEENVELOPE", sql.FixedArity(4), fnSTMakeEnvelope)
	reg("ST_ASTEXT", sql.FixedArity(1), fnSTAsText)
	reg("ST_INTERSECTS", sql.FixedArity(2), spatialPredicate("ST_Intersects", geo.Intersects))
	reg("ST_CONTAINS", sql.FixedArity(2), spatialPredicate("ST_Contains", geo.Contains))
	reg("ST_CONTAINSPROPERLY", sql.FixedArity(2), spatialPredicate("ST_ContainsProperly", geo.ContainsProperly))
	reg("ST_WITHIN", sql.FixedArity(2), spatialPredicate("ST_Within", geo.Within))
	reg("ST_OVERLAPS", sql.FixedArity(2), spatialPredicate("ST_Overlaps", geo.Overlaps))
	reg("ST_TOUCHES", sql.FixedArity(2), spatialPredicate("ST_Touches", geo.Touches))
	reg("ST_EQUALS", sql.FixedArity(2), spatialPredicate("ST_Equals", geo.Equals))
	reg("ST_CROSSES", sql.FixedArity(2), spatialPredicate("ST_Crosses", geo.Crosses))
	reg("ST_COVERS", sql.FixedArity(2), spatialPredicate("ST_Covers", geo.Covers))
	reg("ST_COVEREDBY", sql.FixedArity(2), spatialPredicate("ST_CoveredBy", geo.CoveredBy))
	reg("ST_DWITHIN", sql.FixedArity(3), fnSTDWithin)
	reg("ST_DISTANCE", sql.FixedArity(2), fnSTDistance)
	reg("ST_AREA", sql.FixedArity(1), fnSTArea)
	reg("ST_LENGTH", sql.FixedArity(1), fnSTLength)
	reg("ST_BUFFER", sql.FixedArity(2), fnSTBuffer)

	// control-flow / null-handling supplement
	reg("COALESCE", sql.AtLeastArity(1), fnCoalesce)
	reg("NULLIF", sql.FixedArity(2), fnNullIf)
	reg("GREATEST", sql.AtLeastArity(1), fnGreatest)
	reg("LEAST", sql.AtLeastArity(1), fnLeast)

	// aggregates
	regAgg("COUNT", sql.Arity{Min: 0, Max: 1, AcceptsStar: true})
	regAgg("SUM", sql.FixedArity(1))
	regAgg("AVG", sql.FixedArity(1))
	regAgg("MIN", sql.FixedArity(1))
	regAgg("MAX", sql.FixedArity(1))
	regAgg("STDDEV_POP", sql.FixedArity(1))
	regAgg("STDDEV_SAMP", sql.FixedArity(1))

	return r
}
