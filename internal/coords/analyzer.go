// Package coords compares photo GPS fixes against claimed field
// coordinates and grades how well they agree.
package coords

import (
	"fmt"

	"github.com/agrolens/claimverify/internal/geo"
)

// DefaultToleranceM is the distance within which a photo is treated as
// taken at the claimed location.
const DefaultToleranceM = 50.0

// MatchLevel grades the distance between a photo fix and the claim.
type MatchLevel string

const (
	MatchExact       MatchLevel = "exact_match"
	MatchClose       MatchLevel = "close_match"
	MatchApproximate MatchLevel = "approximate_match"
	MatchNone        MatchLevel = "no_match"
)

// Result is the outcome of comparing one photo against the claim.
type Result struct {
	Available       bool       `json:"available"`
	DistanceM       float64    `json:"distance_m"`
	MatchLevel      MatchLevel `json:"match_level"`
	WithinTolerance bool       `json:"within_tolerance"`
	Detail          string     `json:"detail,omitempty"`
}

// Analyze compares the photo's GPS fix to the claimed coordinate. A nil
// fix or an invalid claimed coordinate yields an unavailable result
// rather than an error; downstream stages treat that as a degraded
// signal, not a failure.
func Analyze(photoFix *geo.Point, claimed geo.Point, toleranceM float64) Result {
	if toleranceM <= 0 {
		toleranceM = DefaultToleranceM
	}

	if photoFix == nil {
		return Result{
			MatchLevel: MatchNone,
			Detail:     "no gps metadata in image",
		}
	}
	if err := photoFix.Validate(); err != nil {
		return Result{
			MatchLevel: MatchNone,
			Detail:     fmt.Sprintf("invalid gps metadata: %v", err),
		}
	}
	if err := claimed.Validate(); err != nil {
		return Result{
			MatchLevel: MatchNone,
			Detail:     fmt.Sprintf("invalid claimed coordinate: %v", err),
		}
	}

	d := geo.Haversine(*photoFix, claimed)

	return Result{
		Available:       true,
		DistanceM:       d,
		MatchLevel:      gradeDistance(d),
		WithinTolerance: d <= toleranceM,
	}
}

func gradeDistance(d float64) MatchLevel {
	switch {
	case d <= 10:
		return MatchExact
	case d <= 50:
		return MatchClose
	case d <= 200:
		return MatchApproximate
	default:
		return MatchNone
	}
}
