package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/sql"
	"github.com/gabereiser/lazysql/sql/geo"
)

func TestSTGeomFromTextAndAsText(t *testing.T) {
	ctx := sql.NewEmptyContext()

	v, err := fnSTGeomFromText(ctx, []sql.Value{sql.String("POINT(1 2)")})
	require.NoError(t, err)
	assert.Equal(t, sql.KindGeometry, v.Kind())

	text, err := fnSTAsText(ctx, []sql.Value{v})
	require.NoError(t, err)
	assert.Equal(t, "POINT(1 2)", text.Text())
}

// A point exactly on a polygon's boundary is contained (touches
// the edge) but not "properly" contained (interior-only).
func TestSTContainsBoundaryCase(t *testing.T) {
	ctx := sql.NewEmptyContext()

	square, err := fnSTGeomFromText(ctx, []sql.Value{sql.String("POLYGON((0 0, 0 10, 10 10, 10 0, 0 0))")})
	require.NoError(t, err)
	boundaryPoint, err := fnSTGeomFromText(ctx, []sql.Value{sql.String("POINT(0 5)")})
	require.NoError(t, err)

	containsFn := spatialPredicate("ST_Contains", geo.Contains)
	v, err := containsFn(ctx, []sql.Value{square, boundaryPoint})
	require.NoError(t, err)
	assert.True(t, v.AsBool())

	properlyFn := spatialPredicate("ST_ContainsProperly", geo.ContainsProperly)
	v, err = properlyFn(ctx, []sql.Value{square, boundaryPoint})
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestSTDistanceAndBuffer(t *testing.T) {
	ctx := sql.NewEmptyContext()

	a, err := fnSTGeomFromText(ctx, []sql.Value{sql.String("POINT(0 0)")})
	require.NoError(t, err)
	b, err := fnSTGeomFromText(ctx, []sql.Value{sql.String("POINT(3 4)")})
	require.NoError(t, err)

	d, err := fnSTDistance(ctx, []sql.Value{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d.AsFloat(), 1e-9)

	buf, err := fnSTBuffer(ctx, []sql.Value{a, sql.Float(2)})
	require.NoError(t, err)
	assert.Equal(t, sql.KindGeometry, buf.Kind())
}
