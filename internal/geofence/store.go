// Package geofence loads parcel boundaries from GeoJSON and decides
// whether evidence photos were taken inside them.
package geofence

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/logger"
)

// DefaultBoundaryHalfSizeDeg is half the side length, in degrees, of the
// square boundary generated when no boundary file exists yet.
const DefaultBoundaryHalfSizeDeg = 0.005

// autoGeneratedSource marks boundaries synthesized from a claim
// coordinate rather than surveyed parcel geometry.
const autoGeneratedSource = "AUTO_GENERATED"

// Store loads a parcel boundary file, creating a square boundary around
// the claim coordinate when the file does not exist. Creation is
// idempotent across goroutines and across concurrent processes.
type Store struct {
	path string
	once sync.Once
	fc   *geojson.FeatureCollection
	err  error
}

// NewStore returns a Store for the boundary file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the boundary feature collection, generating the file
// first if it is absent. Repeated calls return the same result.
func (s *Store) Load(center geo.Point, parcelID string, halfSizeDeg float64) (*geojson.FeatureCollection, error) {
	s.once.Do(func() {
		s.fc, s.err = s.load(center, parcelID, halfSizeDeg)
	})
	return s.fc, s.err
}

func (s *Store) load(center geo.Point, parcelID string, halfSizeDeg float64) (*geojson.FeatureCollection, error) {
	if halfSizeDeg <= 0 {
		halfSizeDeg = DefaultBoundaryHalfSizeDeg
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.create(center, parcelID, halfSizeDeg); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, common.NewInputValidationError("boundary file not readable", err.Error())
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, common.NewGeometryInvalidError("boundary file is not valid GeoJSON", err.Error())
	}
	if len(fc.Features) == 0 {
		return nil, common.NewGeometryInvalidError("boundary file contains no features")
	}

	return fc, nil
}

// create writes a square boundary centered on the claim coordinate.
// O_EXCL makes concurrent creators race safely: the loser re-reads the
// winner's file.
func (s *Store) create(center geo.Point, parcelID string, halfSizeDeg float64) error {
	if err := center.Validate(); err != nil {
		return err
	}

	fc := geojson.NewFeatureCollection()
	feature := geojson.NewFeature(squareBoundary(center, halfSizeDeg))
	feature.Properties["parcel_id"] = parcelID
	feature.Properties["source"] = autoGeneratedSource
	fc.Append(feature)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return common.NewInternalError("failed to encode boundary", err.Error())
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return common.NewInputValidationError("cannot create boundary file", err.Error())
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return common.NewInternalError("failed to write boundary file", err.Error())
	}

	logger.Info("generated parcel boundary",
		zap.String("path", s.path),
		zap.String("parcel_id", parcelID),
		zap.Float64("half_size_deg", halfSizeDeg),
	)

	return nil
}

func squareBoundary(center geo.Point, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{center.Lon - half, center.Lat - half},
		{center.Lon + half, center.Lat - half},
		{center.Lon + half, center.Lat + half},
		{center.Lon - half, center.Lat + half},
		{center.Lon - half, center.Lat - half},
	}}
}
