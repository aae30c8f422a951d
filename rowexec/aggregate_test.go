package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/memory"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

func cityTable() *memory.Table {
	schema := sql.Schema{
		{Name: "name", Type: sql.KindString},
		{Name: "city", Type: sql.KindString},
	}
	rows := [][]sql.Value{
		{sql.String("a"), sql.String("NYC")},
		{sql.String("b"), sql.String("NYC")},
		{sql.String("c"), sql.String("LA")},
		{sql.String("d"), sql.String("NYC")},
		{sql.String("e"), sql.String("LA")},
	}
	return memory.NewTable("u", schema, rows)
}

func TestGroupByCountOrderDesc(t *testing.T) {
	catalog := plan.MapCatalog{"u": cityTable()}
	rows := runQuery(t, catalog, "SELECT city, COUNT(*) AS c FROM u GROUP BY city ORDER BY c DESC")
	require.Len(t, rows, 2)
	require.Equal(t, "NYC", rows[0]["city"].Text())
	require.Equal(t, int64(3), rows[0]["c"].AsInt())
	require.Equal(t, "LA", rows[1]["city"].Text())
	require.Equal(t, int64(2), rows[1]["c"].AsInt())
}

func TestCountStarOverEmptyTableIsZero(t *testing.T) {
	empty := memory.NewTable("e", sql.Schema{{Name: "x", Type: sql.KindInt}}, nil)
	catalog := plan.MapCatalog{"e": empty}
	rows := runQuery(t, catalog, "SELECT COUNT(*) FROM e")
	require.Len(t, rows, 1)
	require.Equal(t, int64(0), rows[0]["count_all"].AsInt())
}

func TestAggregatesOverEmptySetYieldNull(t *testing.T) {
	empty := memory.NewTable("e", sql.Schema{{Name: "x", Type: sql.KindInt}}, nil)
	catalog := plan.MapCatalog{"e": empty}
	rows := runQuery(t, catalog, "SELECT SUM(x) AS s, AVG(x) AS a, MIN(x) AS mn, MAX(x) AS mx FROM e")
	require.Len(t, rows, 1)
	require.True(t, rows[0]["s"].IsNull())
	require.True(t, rows[0]["a"].IsNull())
	require.True(t, rows[0]["mn"].IsNull())
	require.True(t, rows[0]["mx"].IsNull())
}

func numsTable(vals ...interface{}) *memory.Table {
	schema := sql.Schema{{Name: "v", Type: sql.KindInt}}
	var rows [][]sql.Value
	for _, raw := range vals {
		switch x := raw.(type) {
		case nil:
			rows = append(rows, []sql.Value{sql.Null()})
		case int:
			rows = append(rows, []sql.Value{sql.Int(int64(x))})
		case float64:
			rows = append(rows, []sql.Value{sql.Float(x)})
		case string:
			rows = append(rows, []sql.Value{sql.String(x)})
		}
	}
	return memory.NewTable("n", schema, rows)
}

func TestCountSkipsNullsCountStarDoesNot(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, nil, 3)}
	rows := runQuery(t, catalog, "SELECT COUNT(*) AS all_rows, COUNT(v) AS non_null FROM n")
	require.Equal(t, int64(3), rows[0]["all_rows"].AsInt())
	require.Equal(t, int64(2), rows[0]["non_null"].AsInt())
}

func TestCountDistinct(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, 1, 2, nil, 2, 3)}
	rows := runQuery(t, catalog, "SELECT COUNT(DISTINCT v) AS d FROM n")
	require.Equal(t, int64(3), rows[0]["d"].AsInt())
}

// SUM/AVG accumulate numerics only; a string row is skipped, not an error.
func TestSumSkipsNonNumerics(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, "oops", 3)}
	rows := runQuery(t, catalog, "SELECT SUM(v) AS s, AVG(v) AS a FROM n")
	require.Equal(t, "4", rows[0]["s"].Text())
	require.Equal(t, "2", rows[0]["a"].Text())
}

func TestStddevSemantics(t *testing.T) {
	single := plan.MapCatalog{"n": numsTable(5)}
	rows := runQuery(t, single, "SELECT STDDEV_POP(v) AS p, STDDEV_SAMP(v) AS s FROM n")
	require.Equal(t, float64(0), rows[0]["p"].AsFloat())
	require.True(t, rows[0]["s"].IsNull())

	multi := plan.MapCatalog{"n": numsTable(2, 4, 4, 4, 5, 5, 7, 9)}
	rows = runQuery(t, multi, "SELECT STDDEV_POP(v) AS p FROM n")
	require.InDelta(t, 2.0, rows[0]["p"].AsFloat(), 1e-9)
}

func TestJSONArrayAggKeepsNullsAndOrder(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, nil, 2)}
	rows := runQuery(t, catalog, "SELECT JSON_ARRAYAGG(v) AS arr FROM n")
	arr, ok := rows[0]["arr"].AsJSON().([]interface{})
	require.True(t, ok)
	require.Len(t, arr, 3)
	require.Equal(t, int64(1), arr[0])
	require.Nil(t, arr[1])
	require.Equal(t, int64(2), arr[2])
}

func TestAggregateFilterClause(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, 2, 3, 4)}
	rows := runQuery(t, catalog, "SELECT COUNT(*) FILTER (WHERE v > 2) AS big FROM n")
	require.Equal(t, int64(2), rows[0]["big"].AsInt())
}

func TestHavingFiltersGroups(t *testing.T) {
	catalog := plan.MapCatalog{"u": cityTable()}
	rows := runQuery(t, catalog, "SELECT city, COUNT(*) AS c FROM u GROUP BY city HAVING COUNT(*) > 2")
	require.Len(t, rows, 1)
	require.Equal(t, "NYC", rows[0]["city"].Text())
}

// A non-grouped column mixed with aggregates and no GROUP BY binds to the
// first row's value.
func TestNonGroupedColumnBindsFirstRow(t *testing.T) {
	catalog := plan.MapCatalog{"u": cityTable()}
	rows := runQuery(t, catalog, "SELECT name, COUNT(*) AS c FROM u")
	require.Len(t, rows, 1)
	require.Equal(t, "a", rows[0]["name"].Text())
	require.Equal(t, int64(5), rows[0]["c"].AsInt())
}

// Null group keys form their own group, distinct from every value.
func TestNullGroupKeyGroupsWithItself(t *testing.T) {
	catalog := plan.MapCatalog{"n": numsTable(1, nil, 1, nil)}
	rows := runQuery(t, catalog, "SELECT v, COUNT(*) AS c FROM n GROUP BY v")
	require.Len(t, rows, 2)
	counts := map[string]int64{}
	for _, r := range rows {
		key := "null"
		if !r["v"].IsNull() {
			key = r["v"].Text()
		}
		counts[key] = r["c"].AsInt()
	}
	require.Equal(t, int64(2), counts["1"])
	require.Equal(t, int64(2), counts["null"])
}

func TestStarMixedWithAggregateRejected(t *testing.T) {
	catalog := plan.MapCatalog{"u": cityTable()}
	_, err := tryQuery(catalog, "SELECT *, COUNT(*) FROM u")
	require.Error(t, err)
	require.True(t, sql.ErrUnsupportedFeature.Is(err))
}

func TestSumStarRejected(t *testing.T) {
	catalog := plan.MapCatalog{"u": cityTable()}
	_, err := tryQuery(catalog, "SELECT SUM(*) FROM u")
	require.Error(t, err)
}
