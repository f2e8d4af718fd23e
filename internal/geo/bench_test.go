package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

func BenchmarkHaversine(b *testing.B) {
	a := Point{Lat: 37.7749, Lon: -122.4194}
	c := Point{Lat: 34.0522, Lon: -118.2437}
	for i := 0; i < b.N; i++ {
		Haversine(a, c)
	}
}

func BenchmarkPlanarContains(b *testing.B) {
	poly := orb.Polygon{orb.Ring{
		{72.8727, 19.0710}, {72.8827, 19.0710}, {72.8827, 19.0810}, {72.8727, 19.0810}, {72.8727, 19.0710},
	}}
	p := Point{Lat: 19.0760, Lon: 72.8777}
	strategy := PlanarStrategy{}
	for i := 0; i < b.N; i++ {
		strategy.Contains(p, poly)
	}
}

func BenchmarkPlanarDistanceToBoundary(b *testing.B) {
	poly := orb.Polygon{orb.Ring{
		{72.8727, 19.0710}, {72.8827, 19.0710}, {72.8827, 19.0810}, {72.8727, 19.0810}, {72.8727, 19.0710},
	}}
	p := Point{Lat: 19.2000, Lon: 72.8777}
	strategy := PlanarStrategy{}
	for i := 0; i < b.N; i++ {
		strategy.DistanceToBoundaryM(p, poly)
	}
}
