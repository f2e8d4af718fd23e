// Package geo provides geodesic primitives shared by the coordinate
// analyzer and the geofencing engine.
package geo

import (
	"math"

	"github.com/agrolens/claimverify/pkg/common"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects non-finite values and out-of-range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return common.NewInputValidationError("coordinate is not a finite number")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return common.NewInputValidationError("latitude out of range [-90, 90]")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return common.NewInputValidationError("longitude out of range [-180, 180]")
	}
	return nil
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b Point) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
