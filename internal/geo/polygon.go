package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Strategy decides point-in-polygon containment and distance to the
// polygon boundary. Two implementations exist: a full-precision planar
// strategy and a cheaper bounding-box approximation for degraded runs.
type Strategy interface {
	Name() string
	Contains(pt Point, poly orb.Polygon) bool
	// DistanceToBoundaryM returns the distance in meters from pt to the
	// nearest boundary point. Points inside or on the boundary yield 0.
	DistanceToBoundaryM(pt Point, poly orb.Polygon) float64
}

// NewStrategy selects the geometry strategy. Full precision uses exact
// planar containment against every ring; otherwise containment degrades
// to the polygon's bounding box.
func NewStrategy(fullPrecision bool) Strategy {
	if fullPrecision {
		return PlanarStrategy{}
	}
	return BoundingBoxStrategy{}
}

// PlanarStrategy performs exact ray-casting containment on the polygon
// rings. Boundary points count as inside.
type PlanarStrategy struct{}

func (PlanarStrategy) Name() string { return "planar" }

func (PlanarStrategy) Contains(pt Point, poly orb.Polygon) bool {
	return planar.PolygonContains(poly, orb.Point{pt.Lon, pt.Lat})
}

func (s PlanarStrategy) DistanceToBoundaryM(pt Point, poly orb.Polygon) float64 {
	if s.Contains(pt, poly) {
		return 0
	}

	minDist := math.Inf(1)
	for _, ring := range poly {
		for i := 0; i+1 < len(ring); i++ {
			nearest := nearestOnSegment(orb.Point{pt.Lon, pt.Lat}, ring[i], ring[i+1])
			d := Haversine(pt, Point{Lat: nearest[1], Lon: nearest[0]})
			if d < minDist {
				minDist = d
			}
		}
	}
	if math.IsInf(minDist, 1) {
		return 0
	}
	return minDist
}

// BoundingBoxStrategy approximates the polygon with its bounding box.
// It over-approximates containment near concave boundaries but never
// reports an inside point as outside.
type BoundingBoxStrategy struct{}

func (BoundingBoxStrategy) Name() string { return "bounding_box" }

func (BoundingBoxStrategy) Contains(pt Point, poly orb.Polygon) bool {
	return poly.Bound().Contains(orb.Point{pt.Lon, pt.Lat})
}

func (s BoundingBoxStrategy) DistanceToBoundaryM(pt Point, poly orb.Polygon) float64 {
	if s.Contains(pt, poly) {
		return 0
	}

	bound := poly.Bound()
	clamped := Point{
		Lat: clamp(pt.Lat, bound.Min[1], bound.Max[1]),
		Lon: clamp(pt.Lon, bound.Min[0], bound.Max[0]),
	}
	return Haversine(pt, clamped)
}

// nearestOnSegment projects p onto segment ab in degree space. Longitude
// deltas are scaled by cos(lat) so the projection is metrically sound at
// parcel scale.
func nearestOnSegment(p, a, b orb.Point) orb.Point {
	latScale := math.Cos(degToRad(p[1]))

	ax := (a[0] - p[0]) * latScale
	ay := a[1] - p[1]
	bx := (b[0] - p[0]) * latScale
	by := b[1] - p[1]

	dx := bx - ax
	dy := by - ay

	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return a
	}

	t := -(ax*dx + ay*dy) / segLenSq
	t = clamp(t, 0, 1)

	return orb.Point{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
