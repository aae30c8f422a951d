package function

import "math"

var (
	fnSin     = unaryMath(math.Sin, "SIN")
	fnCos     = unaryMath(math.Cos, "COS")
	fnTan     = unaryMath(math.Tan, "TAN")
	fnAsin    = unaryMath(math.Asin, "ASIN")
	fnAcos    = unaryMath(math.Acos, "ACOS")
	fnExp     = unaryMath(math.Exp, "EXP")
	fnLn      = unaryMath(math.Log, "LN")
	fnLog10   = unaryMath(math.Log10, "LOG10")
	fnSqrt    = unaryMath(math.Sqrt, "SQRT")
	fnDegrees = unaryMath(func(x float64) float64 { return x * 180 / math.Pi }, "DEGREES")
	fnRadians = unaryMath(func(x float64) float64 { return x * math.Pi / 180 }, "RADIANS")
)
