// Package damage reconciles the analyzer's damage estimate with the
// farmer-claimed percentage and grades the result.
package damage

import (
	"github.com/agrolens/claimverify/internal/vision"
)

// varianceBandPct is the largest AI-vs-farmer gap inside which both
// figures are trusted and averaged.
const varianceBandPct = 15.0

// Severity grades the final damage percent.
type Severity string

const (
	SeverityMinimal  Severity = "minimal"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// Estimate is the reconciled damage assessment for a claim.
type Estimate struct {
	AIPercent            float64  `json:"ai_percent"`
	FarmerClaimedPercent float64  `json:"farmer_claimed_percent"`
	FinalPercent         float64  `json:"final_percent"`
	VariancePct          float64  `json:"variance_pct"`
	Severity             Severity `json:"severity"`
	Confidence           float64  `json:"confidence"`
	DamageType           string   `json:"damage_type"`
	ImagesAnalyzed       int      `json:"images_analyzed"`
}

// Aggregate runs the analyzer over every damage image, averages the
// estimates and reconciles with the farmer claim. A nil analyzer or an
// empty image list degrades to the analyzer's conservative fallback.
func Aggregate(analyzer vision.Analyzer, imagePaths []string, farmerClaimedPct float64) Estimate {
	results := collect(analyzer, imagePaths)

	var aiPct, conf float64
	damageType := vision.ClassUnknown
	topConf := -1.0
	for _, r := range results {
		aiPct += r.DamagePercent
		conf += r.Confidence
		if r.Confidence > topConf {
			topConf = r.Confidence
			damageType = r.DamageType
		}
	}
	n := float64(len(results))
	aiPct /= n
	conf /= n

	return reconcile(aiPct, conf, damageType, farmerClaimedPct, len(results))
}

func collect(analyzer vision.Analyzer, imagePaths []string) []vision.Result {
	if analyzer == nil || len(imagePaths) == 0 {
		return []vision.Result{vision.FallbackResult()}
	}

	results := make([]vision.Result, 0, len(imagePaths))
	for _, path := range imagePaths {
		results = append(results, analyzer.Analyze(path))
	}
	return results
}

func reconcile(aiPct, confidence float64, damageType string, farmerPct float64, imagesAnalyzed int) Estimate {
	variance := aiPct - farmerPct
	if variance < 0 {
		variance = -variance
	}

	final := aiPct
	if variance <= varianceBandPct {
		final = (aiPct + farmerPct) / 2
	}

	return Estimate{
		AIPercent:            aiPct,
		FarmerClaimedPercent: farmerPct,
		FinalPercent:         final,
		VariancePct:          variance,
		Severity:             SeverityFor(final),
		Confidence:           confidence,
		DamageType:           damageType,
		ImagesAnalyzed:       imagesAnalyzed,
	}
}

// SeverityFor buckets a damage percent.
func SeverityFor(percent float64) Severity {
	switch {
	case percent < 15:
		return SeverityMinimal
	case percent < 35:
		return SeverityModerate
	case percent < 60:
		return SeveritySevere
	default:
		return SeverityCritical
	}
}
