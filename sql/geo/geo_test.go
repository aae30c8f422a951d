package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func square() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
	}}
}

func TestContainsInteriorExteriorBoundary(t *testing.T) {
	poly := square()

	require.True(t, Contains(poly, orb.Point{5, 5}), "interior point")
	require.False(t, Contains(poly, orb.Point{50, 50}), "exterior point")
	require.True(t, Contains(poly, orb.Point{0, 5}), "boundary point")
}

func TestContainsProperlyRejectsBoundary(t *testing.T) {
	poly := square()
	require.True(t, ContainsProperly(poly, orb.Point{5, 5}))
	require.False(t, ContainsProperly(poly, orb.Point{0, 5}))
}

func TestWithinIsConverseOfContains(t *testing.T) {
	poly := square()
	pt := orb.Point{5, 5}
	require.Equal(t, Contains(poly, pt), Within(pt, poly))
}

func TestBoundingBoxRejectsDisjointGeometry(t *testing.T) {
	poly := square()
	far := orb.Point{1000, 1000}
	require.False(t, Intersects(poly, far))
}

func TestWKTRoundTrip(t *testing.T) {
	g, err := FromWKT("POINT (5 5)")
	require.NoError(t, err)
	require.Equal(t, "POINT(5 5)", ToWKT(g))
}

func TestDWithin(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{3, 4}
	require.True(t, DWithin(a, b, 5))
	require.False(t, DWithin(a, b, 4))
}
