// Package fusion folds the four evidence streams into one confidence
// figure and a terminal decision.
package fusion

// Decision is the terminal state for a claim.
type Decision string

const (
	DecisionApprove      Decision = "APPROVE"
	DecisionManualReview Decision = "MANUAL_REVIEW"
	DecisionReject       Decision = "REJECT"
)

// RiskLevel accompanies the decision.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Fixed sub-score weights. They sum to 1.0.
const (
	weightAuthenticity = 0.25
	weightDamage       = 0.30
	weightFraud        = 0.25
	weightExternal     = 0.20
)

// Decision thresholds on overall confidence.
const (
	approveThreshold = 0.75
	reviewThreshold  = 0.50
)

// External validation sub-score by weather fetch outcome.
const (
	externalVerified   = 0.7
	externalUnverified = 0.5
)

// Inputs are the fully resolved evidence streams for one claim.
type Inputs struct {
	ImagesInsideBoundary  int
	ImagesTotal           int
	DamageConfidence      float64
	FraudScore            float64
	InvestigationRequired bool
	WeatherFetchSucceeded bool
	FinalDamagePercent    float64
	SumInsured            float64
}

// SubScores are the four weighted components of overall confidence.
type SubScores struct {
	Authenticity       float64 `json:"authenticity"`
	DamageConfidence   float64 `json:"damage_confidence"`
	FraudConfidence    float64 `json:"fraud_confidence"`
	ExternalValidation float64 `json:"external_validation"`
}

// Outcome is the fused result.
type Outcome struct {
	SubScores         SubScores `json:"sub_scores"`
	OverallConfidence float64   `json:"overall_confidence"`
	Decision          Decision  `json:"decision"`
	RiskLevel         RiskLevel `json:"risk_level"`
	ManualReview      bool      `json:"manual_review"`
	PayoutAmount      float64   `json:"payout_amount"`
}

// Fuse computes the weighted confidence and walks the decision ladder.
// Payout is released only on approval.
func Fuse(in Inputs) Outcome {
	sub := SubScores{
		Authenticity:       authenticity(in.ImagesInsideBoundary, in.ImagesTotal),
		DamageConfidence:   clamp01(in.DamageConfidence),
		FraudConfidence:    clamp01(1 - in.FraudScore),
		ExternalValidation: externalUnverified,
	}
	if in.WeatherFetchSucceeded {
		sub.ExternalValidation = externalVerified
	}

	overall := weightAuthenticity*sub.Authenticity +
		weightDamage*sub.DamageConfidence +
		weightFraud*sub.FraudConfidence +
		weightExternal*sub.ExternalValidation

	out := Outcome{
		SubScores:         sub,
		OverallConfidence: overall,
	}

	switch {
	case overall >= approveThreshold && !in.InvestigationRequired:
		out.Decision = DecisionApprove
		out.RiskLevel = RiskLow
		out.ManualReview = false
		out.PayoutAmount = (in.FinalDamagePercent / 100) * in.SumInsured
	case overall >= reviewThreshold:
		out.Decision = DecisionManualReview
		out.RiskLevel = RiskMedium
		out.ManualReview = true
	default:
		out.Decision = DecisionReject
		out.RiskLevel = RiskHigh
		out.ManualReview = true
	}

	return out
}

func authenticity(inside, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(inside) / float64(total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
