// Package claims orchestrates the full verification pipeline for one
// insurance claim and shapes the final result document.
package claims

import (
	"time"

	"github.com/agrolens/claimverify/internal/coords"
	"github.com/agrolens/claimverify/internal/damage"
	"github.com/agrolens/claimverify/internal/fraud"
	"github.com/agrolens/claimverify/internal/fusion"
	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/internal/geofence"
	"github.com/agrolens/claimverify/internal/weather"
)

// ImageEvidence is one authentication photo with the coordinate the
// farmer claims it was taken at.
type ImageEvidence struct {
	Path    string    `json:"path" binding:"required"`
	Claimed geo.Point `json:"claimed"`
}

// Request carries everything needed to verify one claim.
type Request struct {
	ClaimID         string          `json:"claim_id"`
	ParcelID        string          `json:"parcel_id" binding:"required"`
	Images          []ImageEvidence `json:"images" binding:"required,min=1"`
	DamageImages    []string        `json:"damage_images"`
	FarmerDamagePct float64         `json:"farmer_damage_pct"`
	SumInsured      float64         `json:"sum_insured"`
	ClaimCause      string          `json:"claim_cause"`
	ClaimDate       string          `json:"claim_date"` // ISO date; defaults to today
	BoundaryPath    string          `json:"boundary_path" binding:"required"`
	PriorClaimCount int             `json:"prior_claim_count"`
}

// ImageReport is the per-image evidence trail in the result.
type ImageReport struct {
	Index            int                  `json:"index"`
	Path             string               `json:"path"`
	ExifAvailable    bool                 `json:"exif_available"`
	MetadataFields   int                  `json:"metadata_fields"`
	Coordinates      coords.Result        `json:"coordinates"`
	Geofence         geofence.PointResult `json:"geofence"`
	GeofencedAgainst string               `json:"geofenced_against"` // "exif" or "claimed"
}

// VerificationResult is the single document emitted per claim.
type VerificationResult struct {
	ClaimID           string              `json:"claim_id"`
	ParcelID          string              `json:"parcel_id"`
	Images            []ImageReport       `json:"images"`
	Weather           weather.Observation `json:"weather"`
	WeatherAssessment weather.Assessment  `json:"weather_assessment"`
	Damage            damage.Estimate     `json:"damage"`
	Fraud             fraud.Report        `json:"fraud"`
	SubScores         fusion.SubScores    `json:"sub_scores"`
	OverallConfidence float64             `json:"overall_confidence"`
	Decision          fusion.Decision     `json:"decision"`
	RiskLevel         fusion.RiskLevel    `json:"risk_level"`
	ManualReview      bool                `json:"manual_review"`
	PayoutAmount      float64             `json:"payout_amount"`
	GeneratedAt       time.Time           `json:"generated_at"`
}
