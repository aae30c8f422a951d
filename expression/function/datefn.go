package function

import (
	"math/rand"

	"github.com/gabereiser/lazysql/sql"
)

func fnCurrentDate(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return sql.DateTime(ctx.Now().Format("2006-01-02")), nil
}

func fnCurrentTimestamp(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return sql.DateTime(ctx.Now().UTC().Format("2006-01-02T15:04:05.000Z")), nil
}

// fnRandom backs both RANDOM()/RAND() as an ordinary scalar call; the
// planner special-cases the same names in ORDER BY into a RandomShuffle
// node instead of invoking this.
func fnRandom(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	return sql.Float(rand.Float64()), nil
}
