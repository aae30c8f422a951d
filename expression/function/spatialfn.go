package function

import (
	"github.com/paulmach/orb"

	"github.com/gabereiser/lazysql/sql"
	"github.com/gabereiser/lazysql/sql/geo"
)

func asGeometry(v sql.Value, fnName string) (orb.Geometry, error) {
	g, ok := v.AsGeometry().(orb.Geometry)
	if !ok {
		return nil, sql.ErrArgumentValue.New(fnName + " requires a geometry argument")
	}
	return g, nil
}

func fnSTGeomFromText(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	g, err := geo.FromWKT(args[0].Text())
	if err != nil {
		return sql.Value{}, sql.ErrArgumentValue.New("invalid WKT: " + err.Error())
	}
	return sql.Geometry(g), nil
}

func fnSTAsText(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	g, err := asGeometry(args[0], "ST_AsText")
	if err != nil {
		return sql.Value{}, err
	}
	return sql.String(geo.ToWKT(g)), nil
}

func fnSTMakeEnvelope(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	for _, a := range args {
		if a.IsNull() {
			return sql.Null(), nil
		}
	}
	minx, _ := args[0].Float64()
	miny, _ := args[1].Float64()
	maxx, _ := args[2].Float64()
	maxy, _ := args[3].Float64()
	return sql.Geometry(geo.MakeEnvelope(minx, miny, maxx, maxy)), nil
}

func spatialPredicate(name string, fn func(a, b orb.Geometry) bool) sql.UDF {
	return func(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
		if args[0].IsNull() || args[1].IsNull() {
			return sql.Null(), nil
		}
		a, err := asGeometry(args[0], name)
		if err != nil {
			return sql.Value{}, err
		}
		b, err := asGeometry(args[1], name)
		if err != nil {
			return sql.Value{}, err
		}
		return sql.Bool(fn(a, b)), nil
	}
}

func fnSTDWithin(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
		return sql.Null(), nil
	}
	a, err := asGeometry(args[0], "ST_DWithin")
	if err != nil {
		return sql.Value{}, err
	}
	b, err := asGeometry(args[1], "ST_DWithin")
	if err != nil {
		return sql.Value{}, err
	}
	dist, _ := args[2].Float64()
	return sql.Bool(geo.DWithin(a, b, dist)), nil
}

func fnSTDistance(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	a, err := asGeometry(args[0], "ST_Distance")
	if err != nil {
		return sql.Value{}, err
	}
	b, err := asGeometry(args[1], "ST_Distance")
	if err != nil {
		return sql.Value{}, err
	}
	return sql.Float(geo.Distance(a, b)), nil
}

func fnSTArea(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	g, err := asGeometry(args[0], "ST_Area")
	if err != nil {
		return sql.Value{}, err
	}
	return sql.Float(geo.Area(g)), nil
}

func fnSTLength(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	g, err := asGeometry(args[0], "ST_Length")
	if err != nil {
		return sql.Value{}, err
	}
	return sql.Float(geo.Length(g)), nil
}

func fnSTBuffer(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	g, err := asGeometry(args[0], "ST_Buffer")
	if err != nil {
		return sql.Value{}, err
	}
	pt, ok := g.(orb.Point)
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("ST_Buffer only supports point geometry")
	}
	dist, _ := args[1].Float64()
	return sql.Geometry(geo.Buffer(pt, dist, 32)), nil
}
