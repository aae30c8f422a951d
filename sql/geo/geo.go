// Package geo implements the spatial predicate engine backing the ST_*
// function family: bounding-box early rejection, ray-casting
// point-in-polygon with a boundary tolerance, and segment-intersection
// testing via cross-product sign with a collinear on-segment fallback.
// Coordinate storage and WKT parsing are delegated to github.com/paulmach/orb;
// the predicate semantics (ST_ContainsProperly vs ST_Covers vs ST_Within,
// boundary handling, EPSILON tolerance) are this engine's own, since orb's
// own planar package does not expose this exact relation set.
package geo

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EPSILON is the tolerance used when classifying a point as lying on a
// polygon boundary during ray-casting.
const EPSILON = 1e-10

// FromWKT parses a WKT geometry literal, as used by ST_GeomFromText.
func FromWKT(s string) (orb.Geometry, error) {
	return wkt.Unmarshal(s)
}

// ToWKT renders a geometry back to WKT, as used by ST_AsText.
func ToWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// boundCache memoizes bounding boxes per geometry identity. It is
// process-wide, initialize-once, and safe for concurrent reads: the only
// writes are idempotent inserts guarded by a mutex.
type boundCache struct {
	mu sync.RWMutex
	m  map[uintptr]orb.Bound
}

var bboxCache = &boundCache{m: make(map[uintptr]orb.Bound)}

// identityKey returns a stable key for slice-backed geometries (LineString,
// Polygon, MultiPoint, MultiLineString, MultiPolygon, Ring). Point is an
// array, not a slice, so it is not identity-cached: identityKey returns
// ok=false for non-slice kinds and for empty slices.
func identityKey(g orb.Geometry) (uintptr, bool) {
	v := reflect.ValueOf(g)
	if v.Kind() != reflect.Slice || v.Len() == 0 {
		return 0, false
	}
	return v.Pointer(), true
}

// Bound returns the bounding box of g, memoized by geometry identity.
func Bound(g orb.Geometry) orb.Bound {
	key, cacheable := identityKey(g)
	if cacheable {
		bboxCache.mu.RLock()
		if b, ok := bboxCache.m[key]; ok {
			bboxCache.mu.RUnlock()
			return b
		}
		bboxCache.mu.RUnlock()
	}

	b := g.Bound()

	if cacheable {
		bboxCache.mu.Lock()
		bboxCache.m[key] = b
		bboxCache.mu.Unlock()
	}
	return b
}

func boundsDisjoint(a, b orb.Bound) bool {
	return a.Max.X() < b.Min.X() || b.Max.X() < a.Min.X() ||
		a.Max.Y() < b.Min.Y() || b.Max.Y() < a.Min.Y()
}

// PointInPolygonStatus classifies a point relative to a polygon's interior,
// boundary, and exterior.
type PointInPolygonStatus int

const (
	Exterior PointInPolygonStatus = iota
	Boundary
	Interior
)

// ClassifyPoint runs ray-casting against every ring of poly (outer ring plus
// holes), short-circuiting via a bounding-box check. A point exactly on any
// edge (within EPSILON) is Boundary; holes invert interior classification.
func ClassifyPoint(pt orb.Point, poly orb.Polygon) PointInPolygonStatus {
	if boundsDisjoint(orb.Bound{Min: pt, Max: pt}, Bound(poly)) {
		return Exterior
	}

	inside := false
	for ri, ring := range poly {
		status := classifyAgainstRing(pt, ring)
		if status == Boundary {
			return Boundary
		}
		crossed := status == Interior
		if ri == 0 {
			inside = crossed
		} else if crossed {
			// a hole's interior subtracts from the outer ring's interior
			inside = inside && !crossed
		}
	}
	if inside {
		return Interior
	}
	return Exterior
}

// classifyAgainstRing performs the ray-casting test (even-odd rule) for a
// single ring, with an on-segment boundary check per edge.
func classifyAgainstRing(pt orb.Point, ring orb.Ring) PointInPolygonStatus {
	n := len(ring)
	if n < 3 {
		return Exterior
	}
	inside := false
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if onSegment(a, b, pt) {
			return Boundary
		}
		if (a.Y() > pt.Y()) != (b.Y() > pt.Y()) {
			xIntersect := (b.X()-a.X())*(pt.Y()-a.Y())/(b.Y()-a.Y()) + a.X()
			if pt.X() < xIntersect {
				inside = !inside
			}
		}
	}
	if inside {
		return Interior
	}
	return Exterior
}

// cross returns the z-component of the cross product (b-a) x (c-a); its
// sign gives the orientation of c relative to segment a->b.
func cross(a, b, c orb.Point) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}

// onSegment reports whether p lies on the closed segment a-b within
// EPSILON, using the collinear cross-product test plus a bounding check.
func onSegment(a, b, p orb.Point) bool {
	if math.Abs(cross(a, b, p)) > EPSILON {
		return false
	}
	minX, maxX := math.Min(a.X(), b.X()), math.Max(a.X(), b.X())
	minY, maxY := math.Min(a.Y(), b.Y()), math.Max(a.Y(), b.Y())
	return p.X() >= minX-EPSILON && p.X() <= maxX+EPSILON &&
		p.Y() >= minY-EPSILON && p.Y() <= maxY+EPSILON
}

func sign(x float64) int {
	switch {
	case x > EPSILON:
		return 1
	case x < -EPSILON:
		return -1
	default:
		return 0
	}
}

// SegmentsIntersect reports whether segments p1-p2 and p3-p4 intersect,
// including touching endpoints and collinear overlap.
func SegmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := sign(cross(p3, p4, p1))
	d2 := sign(cross(p3, p4, p2))
	d3 := sign(cross(p1, p2, p3))
	d4 := sign(cross(p1, p2, p4))

	if d1 != d2 && d3 != d4 {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// ringSegments yields the edges of a ring as consecutive point pairs.
func ringSegments(ring orb.Ring, f func(a, b orb.Point) bool) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		if f(ring[i], ring[(i+1)%n]) {
			return true
		}
	}
	return false
}

// polygonRings flattens a polygon's rings for edge iteration.
func polygonRings(p orb.Polygon) []orb.Ring {
	return p
}

// asPolygons widens any supported geometry to its polygon set (empty for
// non-areal geometries) to share boundary/interior logic across predicates.
func asPolygons(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return v
	default:
		return nil
	}
}

// asLineStrings widens any supported geometry to its linear parts.
func asLineStrings(g orb.Geometry) []orb.LineString {
	switch v := g.(type) {
	case orb.LineString:
		return []orb.LineString{v}
	case orb.MultiLineString:
		return v
	case orb.Polygon:
		out := make([]orb.LineString, len(v))
		for i, r := range v {
			out[i] = orb.LineString(r)
		}
		return out
	case orb.MultiPolygon:
		var out []orb.LineString
		for _, poly := range v {
			for _, r := range poly {
				out = append(out, orb.LineString(r))
			}
		}
		return out
	default:
		return nil
	}
}

// asPoints widens any supported geometry to its point parts.
func asPoints(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.MultiPoint:
		return v
	default:
		return nil
	}
}

func pointInAnyPolygon(pt orb.Point, polys []orb.Polygon) PointInPolygonStatus {
	best := Exterior
	for _, poly := range polys {
		switch ClassifyPoint(pt, poly) {
		case Interior:
			return Interior
		case Boundary:
			best = Boundary
		}
	}
	return best
}

func anyLineTouchesPolygon(lines []orb.LineString, polys []orb.Polygon) bool {
	for _, poly := range polys {
		for _, ring := range polygonRings(poly) {
			for _, ls := range lines {
				if ringSegments(ring, func(a, b orb.Point) bool {
					return ringSegments(orb.Ring(ls), func(c, d orb.Point) bool {
						return SegmentsIntersect(a, b, c, d)
					})
				}) {
					return true
				}
			}
		}
	}
	return false
}

// Intersects implements ST_Intersects: true iff the geometries share at
// least one point (bbox reject first).
func Intersects(a, b orb.Geometry) bool {
	if boundsDisjoint(Bound(a), Bound(b)) {
		return false
	}
	// point-in-polygon short circuits
	for _, pt := range asPoints(a) {
		if pointInAnyPolygon(pt, asPolygons(b)) != Exterior {
			return true
		}
	}
	for _, pt := range asPoints(b) {
		if pointInAnyPolygon(pt, asPolygons(a)) != Exterior {
			return true
		}
	}
	if anyLineTouchesPolygon(asLineStrings(a), asPolygons(b)) ||
		anyLineTouchesPolygon(asLineStrings(b), asPolygons(a)) {
		return true
	}
	// polygon containing polygon (no boundary touch required)
	for _, pa := range asPolygons(a) {
		for _, pb := range asPolygons(b) {
			if len(pa) > 0 && ClassifyPoint(pa[0][0], pb) != Exterior {
				return true
			}
			if len(pb) > 0 && ClassifyPoint(pb[0][0], pa) != Exterior {
				return true
			}
		}
	}
	return segmentSetsIntersect(asLineStrings(a), asLineStrings(b))
}

func segmentSetsIntersect(as, bs []orb.LineString) bool {
	for _, a := range as {
		for _, b := range bs {
			if ringSegments(orb.Ring(a), func(p1, p2 orb.Point) bool {
				return ringSegments(orb.Ring(b), func(p3, p4 orb.Point) bool {
					return SegmentsIntersect(p1, p2, p3, p4)
				})
			}) {
				return true
			}
		}
	}
	return false
}

// Contains implements ST_Contains: every vertex of b lies in the interior or
// on the boundary of a. Interiors are not required to intersect, so a point
// on a's boundary counts as contained; edges between vertices are not
// tested on their own. For the point cases this reduces to point-in-polygon.
func Contains(a, b orb.Geometry) bool {
	polys := asPolygons(a)
	if len(polys) == 0 {
		return false
	}
	for _, pt := range asPoints(b) {
		if pointInAnyPolygon(pt, polys) == Exterior {
			return false
		}
	}
	for _, ls := range asLineStrings(b) {
		for _, pt := range ls {
			if pointInAnyPolygon(pt, polys) == Exterior {
				return false
			}
		}
	}
	for _, pb := range asPolygons(b) {
		for _, ring := range pb {
			for _, pt := range ring {
				if pointInAnyPolygon(pt, polys) == Exterior {
					return false
				}
			}
		}
	}
	return true
}

// ContainsProperly is Contains but rejects any boundary-only touch: every
// vertex of b must fall strictly in a's interior (edges between vertices
// are not tested on their own).
func ContainsProperly(a, b orb.Geometry) bool {
	polys := asPolygons(a)
	if len(polys) == 0 {
		return false
	}
	check := func(pt orb.Point) bool {
		return pointInAnyPolygon(pt, polys) == Interior
	}
	for _, pt := range asPoints(b) {
		if !check(pt) {
			return false
		}
	}
	for _, ls := range asLineStrings(b) {
		for _, pt := range ls {
			if !check(pt) {
				return false
			}
		}
	}
	for _, pb := range asPolygons(b) {
		for _, ring := range pb {
			for _, pt := range ring {
				if !check(pt) {
					return false
				}
			}
		}
	}
	return true
}

// Within is the converse of Contains: a is within b iff b contains a.
func Within(a, b orb.Geometry) bool { return Contains(b, a) }

// Covers is Contains without requiring interior intersection (boundary-only
// containment of a degenerate b still counts); our Contains already treats
// boundary points as contained, so Covers and Contains coincide here.
func Covers(a, b orb.Geometry) bool { return Contains(a, b) }

// CoveredBy is the converse of Covers.
func CoveredBy(a, b orb.Geometry) bool { return Covers(b, a) }

// Touches reports whether a and b share only boundary points, with disjoint
// interiors: they must intersect, but no point of either may fall in the
// other's interior.
func Touches(a, b orb.Geometry) bool {
	if boundsDisjoint(Bound(a), Bound(b)) {
		return false
	}
	for _, pt := range asPoints(a) {
		if pointInAnyPolygon(pt, asPolygons(b)) == Interior {
			return false
		}
	}
	for _, pt := range asPoints(b) {
		if pointInAnyPolygon(pt, asPolygons(a)) == Interior {
			return false
		}
	}
	return Intersects(a, b)
}

// Equals reports whether a and b describe the same point set, compared via
// their WKT canonical form (coordinate-for-coordinate equality is too
// strict across differing ring start points; this engine's callers always
// compare geometries produced by the same source).
func Equals(a, b orb.Geometry) bool {
	return ToWKT(a) == ToWKT(b)
}

// Crosses reports whether a and b intersect in a set of lower dimension
// than the maximum of their own, the classic "crosses" spatial relation for
// line/polygon or line/line pairs.
func Crosses(a, b orb.Geometry) bool {
	linesA, linesB := asLineStrings(a), asLineStrings(b)
	if len(linesA) > 0 && len(linesB) > 0 {
		return segmentSetsIntersect(linesA, linesB) && !Equals(a, b)
	}
	if len(linesA) > 0 && len(asPolygons(b)) > 0 {
		inside, outside := false, false
		for _, ls := range linesA {
			for _, pt := range ls {
				if pointInAnyPolygon(pt, asPolygons(b)) == Interior {
					inside = true
				} else {
					outside = true
				}
			}
		}
		return inside && outside
	}
	return false
}

// Overlaps reports whether a and b share interior points but neither
// contains the other and they are not equal.
func Overlaps(a, b orb.Geometry) bool {
	if Equals(a, b) {
		return false
	}
	if !Intersects(a, b) {
		return false
	}
	if Contains(a, b) || Contains(b, a) {
		return false
	}
	return true
}

// Distance returns the minimum planar distance between any point of a and
// any point of b; 0 if they intersect.
func Distance(a, b orb.Geometry) float64 {
	if Intersects(a, b) {
		return 0
	}
	best := math.Inf(1)
	ptsA, ptsB := geometryPoints(a), geometryPoints(b)
	for _, pa := range ptsA {
		for _, pb := range ptsB {
			d := math.Hypot(pa.X()-pb.X(), pa.Y()-pb.Y())
			if d < best {
				best = d
			}
		}
	}
	for _, pair := range [2][2]orb.Geometry{{a, b}, {b, a}} {
		for _, p := range geometryPoints(pair[0]) {
			for _, ls := range asLineStrings(pair[1]) {
				for i := 0; i+1 < len(ls); i++ {
					s, dx, dy := ls[i], ls[i+1].X()-ls[i].X(), ls[i+1].Y()-ls[i].Y()
					t := ((p.X()-s.X())*dx + (p.Y()-s.Y())*dy) / (dx*dx + dy*dy)
					if t > 0 && t < 1 {
						best = math.Min(best, math.Hypot(p.X()-s.X()-t*dx, p.Y()-s.Y()-t*dy))
					}
				}
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

func geometryPoints(g orb.Geometry) []orb.Point {
	var out []orb.Point
	out = append(out, asPoints(g)...)
	for _, ls := range asLineStrings(g) {
		out = append(out, ls...)
	}
	return out
}

// DWithin implements ST_DWithin: true iff the minimum distance between a and
// b is less than or equal to dist.
func DWithin(a, b orb.Geometry, dist float64) bool {
	return Distance(a, b) <= dist
}

// Area sums the shoelace area of every outer ring, subtracting holes.
func Area(g orb.Geometry) float64 {
	total := 0.0
	for _, poly := range asPolygons(g) {
		for i, ring := range poly {
			a := math.Abs(ringArea(ring))
			if i == 0 {
				total += a
			} else {
				total -= a
			}
		}
	}
	return total
}

func ringArea(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		sum += a.X()*b.Y() - b.X()*a.Y()
	}
	return sum / 2
}

// Length sums the segment lengths of every linear part of g.
func Length(g orb.Geometry) float64 {
	total := 0.0
	for _, ls := range asLineStrings(g) {
		for i := 0; i+1 < len(ls); i++ {
			a, b := ls[i], ls[i+1]
			total += math.Hypot(b.X()-a.X(), b.Y()-a.Y())
		}
	}
	return total
}

// MakeEnvelope builds a rectangular polygon from two corners, as used by
// ST_MakeEnvelope.
func MakeEnvelope(minX, minY, maxX, maxY float64) orb.Polygon {
	ring := orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}
	return orb.Polygon{ring}
}

// Buffer approximates a disc buffer around a point geometry; used to back
// ST_Buffer for point inputs, the only Buffer use the function registry
// exposes.
func Buffer(pt orb.Point, radius float64, segments int) orb.Polygon {
	if segments < 8 {
		segments = 8
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{pt.X() + radius*math.Cos(theta), pt.Y() + radius*math.Sin(theta)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// DescribeKind renders a human label for error messages.
func DescribeKind(g orb.Geometry) string {
	return fmt.Sprintf("%T", g)
}
