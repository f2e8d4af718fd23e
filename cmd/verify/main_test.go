package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolens/claimverify/pkg/config"
)

func defaultVerification() config.VerificationConfig {
	return config.VerificationConfig{
		CoordinateToleranceM:  50,
		TrustClaimedCoords:    true,
		BoundaryHalfSizeDeg:   0.005,
		FullPrecisionGeometry: true,
	}
}

func TestParseArgsFourImages(t *testing.T) {
	args := []string{
		"a.jpg", "19.0760", "72.8777",
		"b.jpg", "19.0761", "72.8778",
		"c.jpg", "19.0762", "72.8779",
		"d.jpg", "19.0763", "72.8780",
		"damage.jpg", "55", "100000", "boundary.geojson", "PARCEL-1",
	}
	cfg := defaultVerification()

	req, appErr := parseArgs(args, &cfg)

	require.Nil(t, appErr)
	require.Len(t, req.Images, 4)
	assert.Equal(t, "a.jpg", req.Images[0].Path)
	assert.InDelta(t, 19.0760, req.Images[0].Claimed.Lat, 1e-9)
	assert.Equal(t, []string{"damage.jpg"}, req.DamageImages)
	assert.InDelta(t, 55, req.FarmerDamagePct, 1e-9)
	assert.InDelta(t, 100000, req.SumInsured, 1e-9)
	assert.Equal(t, "boundary.geojson", req.BoundaryPath)
	assert.Equal(t, "PARCEL-1", req.ParcelID)
	assert.True(t, cfg.TrustClaimedCoords)
}

func TestParseArgsSingleImageWithTrustFlag(t *testing.T) {
	args := []string{
		"a.jpg", "19.0760", "72.8777",
		"damage.jpg", "40", "50000", "boundary.geojson", "PARCEL-2", "0",
	}
	cfg := defaultVerification()

	req, appErr := parseArgs(args, &cfg)

	require.Nil(t, appErr)
	require.Len(t, req.Images, 1)
	assert.False(t, cfg.TrustClaimedCoords)
}

func TestParseArgsTrustFlagSpellings(t *testing.T) {
	for _, spelling := range []string{"1", "true", "True", "yes", "YES"} {
		args := []string{
			"a.jpg", "19.0760", "72.8777",
			"damage.jpg", "40", "50000", "boundary.geojson", "PARCEL-2", spelling,
		}
		cfg := defaultVerification()
		cfg.TrustClaimedCoords = false

		_, appErr := parseArgs(args, &cfg)

		require.Nil(t, appErr, spelling)
		assert.True(t, cfg.TrustClaimedCoords, spelling)
	}
}

func TestParseArgsNonNumericLatitude(t *testing.T) {
	args := []string{
		"a.jpg", "not-a-number", "72.8777",
		"damage.jpg", "40", "50000", "boundary.geojson", "PARCEL-2",
	}
	cfg := defaultVerification()

	_, appErr := parseArgs(args, &cfg)

	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Message, "latitude")
}

func TestParseArgsWrongShape(t *testing.T) {
	// 10 args: neither (n-5)%3==0 nor (n-6)%3==0.
	args := []string{"a.jpg", "1", "2", "b.jpg", "1", "damage.jpg", "40", "50000", "b.geojson", "P"}
	cfg := defaultVerification()

	_, appErr := parseArgs(args, &cfg)

	assert.NotNil(t, appErr)
}
