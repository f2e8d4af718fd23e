package geofence

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/logger"
)

// PointResult describes where a point sits relative to the parcel.
type PointResult struct {
	Inside                bool    `json:"inside"`
	ParcelID              string  `json:"parcel_id,omitempty"`
	DistanceFromBoundaryM float64 `json:"distance_from_boundary_m"`
}

// Engine evaluates points against a boundary feature collection using a
// pluggable geometry strategy.
type Engine struct {
	strategy geo.Strategy
}

// NewEngine creates an Engine with the given geometry strategy.
func NewEngine(strategy geo.Strategy) *Engine {
	return &Engine{strategy: strategy}
}

// Evaluate checks pt against every usable feature. A point inside any
// feature reports that feature's parcel id and distance 0; otherwise the
// minimum distance to any boundary is reported. Features with broken
// geometry are skipped; if none are usable the boundary is rejected.
func (e *Engine) Evaluate(fc *geojson.FeatureCollection, pt geo.Point) (PointResult, error) {
	if err := pt.Validate(); err != nil {
		return PointResult{}, err
	}

	usable := 0
	minDist := math.Inf(1)

	for i, feature := range fc.Features {
		polys := usablePolygons(feature.Geometry)
		if len(polys) == 0 {
			logger.Warn("skipping feature with unusable geometry",
				zap.Int("feature_index", i),
			)
			continue
		}
		usable++

		for _, poly := range polys {
			if e.strategy.Contains(pt, poly) {
				return PointResult{
					Inside:   true,
					ParcelID: parcelID(feature),
				}, nil
			}
			if d := e.strategy.DistanceToBoundaryM(pt, poly); d < minDist {
				minDist = d
			}
		}
	}

	if usable == 0 {
		return PointResult{}, common.NewGeometryInvalidError("no usable parcel geometry in boundary file")
	}

	return PointResult{
		Inside:                false,
		DistanceFromBoundaryM: minDist,
	}, nil
}

// usablePolygons extracts polygons from a feature geometry. Rings with
// fewer than four positions cannot close and are rejected.
func usablePolygons(g orb.Geometry) []orb.Polygon {
	var polys []orb.Polygon

	switch geom := g.(type) {
	case orb.Polygon:
		if validPolygon(geom) {
			polys = append(polys, geom)
		}
	case orb.MultiPolygon:
		for _, p := range geom {
			if validPolygon(p) {
				polys = append(polys, p)
			}
		}
	}

	return polys
}

func validPolygon(p orb.Polygon) bool {
	if len(p) == 0 {
		return false
	}
	for _, ring := range p {
		if len(ring) < 4 {
			return false
		}
	}
	return true
}

func parcelID(feature *geojson.Feature) string {
	if feature.Properties == nil {
		return ""
	}
	if id, ok := feature.Properties["parcel_id"].(string); ok {
		return id
	}
	return ""
}
