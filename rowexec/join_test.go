package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/memory"
	"github.com/gabereiser/lazysql/plan"
	"github.com/gabereiser/lazysql/sql"
)

// Matched pairs preserve probe-side (left) order, with each outer row's
// matches in build order.
func TestHashJoinInner(t *testing.T) {
	rows := runQuery(t, testCatalog(),
		"SELECT users.name, orders.product FROM users JOIN orders ON users.id = orders.user_id")
	require.Len(t, rows, 3)
	require.Equal(t, "Alice", rows[0]["name"].Text())
	require.Equal(t, "book", rows[0]["product"].Text())
	require.Equal(t, "Alice", rows[1]["name"].Text())
	require.Equal(t, "pen", rows[1]["product"].Text())
	require.Equal(t, "Bob", rows[2]["name"].Text())
	require.Equal(t, "lamp", rows[2]["product"].Text())
}

// A LEFT JOIN emits an unmatched outer row exactly once,
// null-padded on the inner side.
func TestLeftJoinUnmatchedRowPaddedOnce(t *testing.T) {
	rows := runQuery(t, testCatalog(),
		"SELECT users.name, orders.product FROM users LEFT JOIN orders ON users.id = orders.user_id")
	var charlie []map[string]sql.Value
	for _, r := range rows {
		if r["name"].Text() == "Charlie" {
			charlie = append(charlie, r)
		}
	}
	require.Len(t, charlie, 1)
	require.True(t, charlie[0]["product"].IsNull())
}

func TestRightJoinEmitsUnmatchedInner(t *testing.T) {
	orphan := memory.NewTable("orders", sql.Schema{
		{Name: "order_id", Type: sql.KindInt},
		{Name: "user_id", Type: sql.KindInt},
		{Name: "product", Type: sql.KindString},
	}, [][]sql.Value{
		{sql.Int(100), sql.Int(1), sql.String("book")},
		{sql.Int(101), sql.Int(99), sql.String("ghost")},
	})
	catalog := testCatalog()
	catalog["orders"] = orphan

	rows := runQuery(t, catalog,
		"SELECT users.name, orders.product FROM users RIGHT JOIN orders ON users.id = orders.user_id")
	require.Len(t, rows, 2)
	var ghost map[string]sql.Value
	for _, r := range rows {
		if r["product"].Text() == "ghost" {
			ghost = r
		}
	}
	require.NotNil(t, ghost)
	require.True(t, ghost["name"].IsNull())
}

func TestFullJoinEmitsBothUnmatchedSides(t *testing.T) {
	left := memory.NewTable("a", sql.Schema{{Name: "k", Type: sql.KindInt}},
		[][]sql.Value{{sql.Int(1)}, {sql.Int(2)}})
	right := memory.NewTable("b", sql.Schema{{Name: "j", Type: sql.KindInt}},
		[][]sql.Value{{sql.Int(2)}, {sql.Int(3)}})
	catalog := plan.MapCatalog{"a": left, "b": right}

	rows := runQuery(t, catalog, "SELECT a.k, b.j FROM a FULL JOIN b ON a.k = b.j")
	require.Len(t, rows, 3)
}

// SQL join semantics: a null key matches nothing, including another null.
func TestHashJoinNullKeysNeverMatch(t *testing.T) {
	left := memory.NewTable("a", sql.Schema{{Name: "k", Type: sql.KindInt}},
		[][]sql.Value{{sql.Null()}, {sql.Int(1)}})
	right := memory.NewTable("b", sql.Schema{{Name: "j", Type: sql.KindInt}},
		[][]sql.Value{{sql.Null()}, {sql.Int(1)}})
	catalog := plan.MapCatalog{"a": left, "b": right}

	rows := runQuery(t, catalog, "SELECT a.k FROM a JOIN b ON a.k = b.j")
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0]["k"].AsInt())
}

func TestNestedLoopJoinNonEquiCondition(t *testing.T) {
	rows := runQuery(t, testCatalog(),
		"SELECT users.name FROM users JOIN orders ON users.id < orders.user_id")
	// Alice (id 1) pairs with Bob's order (user_id 2); nothing else.
	require.Len(t, rows, 1)
	require.Equal(t, "Alice", rows[0]["name"].Text())
}

func TestPositionalJoinPadsShorterSide(t *testing.T) {
	left := memory.NewTable("a", sql.Schema{{Name: "x", Type: sql.KindInt}},
		[][]sql.Value{{sql.Int(1)}, {sql.Int(2)}, {sql.Int(3)}})
	right := memory.NewTable("b", sql.Schema{{Name: "y", Type: sql.KindString}},
		[][]sql.Value{{sql.String("only")}})
	catalog := plan.MapCatalog{"a": left, "b": right}

	rows := runQuery(t, catalog, "SELECT a.x, b.y FROM a POSITIONAL JOIN b")
	require.Len(t, rows, 3)
	require.Equal(t, "only", rows[0]["y"].Text())
	require.True(t, rows[1]["y"].IsNull())
	require.True(t, rows[2]["y"].IsNull())
}

// Unqualified column collisions across join sides are last-write-wins, with
// the qualified names still resolving to each side precisely.
func TestJoinCollidingColumnsQualifiedAccess(t *testing.T) {
	left := memory.NewTable("a", sql.Schema{{Name: "v", Type: sql.KindInt}},
		[][]sql.Value{{sql.Int(10)}})
	right := memory.NewTable("b", sql.Schema{{Name: "v", Type: sql.KindInt}},
		[][]sql.Value{{sql.Int(20)}})
	catalog := plan.MapCatalog{"a": left, "b": right}

	rows := runQuery(t, catalog, "SELECT a.v AS av, b.v AS bv FROM a JOIN b ON a.v < b.v")
	require.Len(t, rows, 1)
	require.Equal(t, int64(10), rows[0]["av"].AsInt())
	require.Equal(t, int64(20), rows[0]["bv"].AsInt())
}

// The reversed equi-key form (orders.user_id = users.id) still hash-joins
// with each operand evaluated against its own side.
func TestHashJoinReversedKeyOperands(t *testing.T) {
	rows := runQuery(t, testCatalog(),
		"SELECT users.name FROM users JOIN orders ON orders.user_id = users.id")
	require.Len(t, rows, 3)
	require.Equal(t, "Alice", rows[0]["name"].Text())
}
