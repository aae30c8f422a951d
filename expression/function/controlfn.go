package function

import "github.com/gabereiser/lazysql/sql"

// fnCoalesce implements COALESCE(e1, ..., eN): the first non-null argument.
func fnCoalesce(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return sql.Null(), nil
}

// fnNullIf implements NULLIF(a, b): null if a equals b, else a.
func fnNullIf(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	a, b := args[0], args[1]
	if a.IsNull() || b.IsNull() {
		return a, nil
	}
	if sql.Equal(a, b) {
		return sql.Null(), nil
	}
	return a, nil
}

// fnGreatest/fnLeast follow the MySQL convention shared by this function
// set's other borrowed names (ST_*, JSON_*, REGEXP_*): any null argument
// makes the result null.
func fnGreatest(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return extreme(args, 1)
}

func fnLeast(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return extreme(args, -1)
}

func extreme(args []sql.Value, dir int) (sql.Value, error) {
	best := args[0]
	if best.IsNull() {
		return sql.Null(), nil
	}
	for _, a := range args[1:] {
		if a.IsNull() {
			return sql.Null(), nil
		}
		if sql.Compare(a, best)*dir > 0 {
			best = a
		}
	}
	return best, nil
}
