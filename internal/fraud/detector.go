// Package fraud aggregates independent fraud signals across a claim's
// evidence into a single score.
package fraud

import (
	"fmt"
	"strings"

	"github.com/agrolens/claimverify/internal/coords"
	"github.com/agrolens/claimverify/internal/exif"
)

// Severity ranks how damning a flag is on its own.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Flag categories group signals by what they attack.
const (
	CategoryAuthenticity = "authenticity"
	CategoryLocation     = "location"
	CategoryFinancial    = "financial"
	CategoryPattern      = "pattern"
)

// severityWeights convert flags into score contributions.
var severityWeights = map[Severity]float64{
	SeverityCritical: 0.4,
	SeverityHigh:     0.3,
	SeverityMedium:   0.2,
	SeverityLow:      0.1,
}

// baselineScore is reported when no flags fire. Fraud is never fully
// ruled out.
const baselineScore = 0.05

// investigationThreshold is the score above which a claim cannot be
// auto-approved.
const investigationThreshold = 0.5

// coordMismatchThresholdM is the EXIF/claimed distance beyond which the
// photo location itself becomes a fraud signal.
const coordMismatchThresholdM = 500.0

// knownEditors are software tag substrings that indicate post-processing.
var knownEditors = []string{"photoshop", "gimp", "paint.net"}

// Flag is one independent fraud signal.
type Flag struct {
	Category   string   `json:"category"`
	Severity   Severity `json:"severity"`
	Detail     string   `json:"detail"`
	Confidence float64  `json:"confidence"`
}

// Evidence is everything the detector inspects for one claim.
type Evidence struct {
	Metadata           []exif.Metadata
	CoordResults       []coords.Result
	PriorClaimCount    int
	ClaimedDamagePct   float64
	CalculatedPct      float64
	AnalyzerConfidence float64
}

// Report is the aggregated fraud assessment.
type Report struct {
	Score                 float64 `json:"score"`
	Flags                 []Flag  `json:"flags"`
	InvestigationRequired bool    `json:"investigation_required"`
}

// Detect runs every signal over the evidence and aggregates the score:
// sum of severity weight times flag confidence, capped at 1.0, with a
// 0.05 floor when nothing fired.
func Detect(ev Evidence) Report {
	var flags []Flag

	if flag, ok := metadataScarcity(ev.Metadata); ok {
		flags = append(flags, flag)
	}
	flags = append(flags, coordinateMismatches(ev.CoordResults)...)
	flags = append(flags, editingSoftware(ev.Metadata)...)
	if flag, ok := claimFrequency(ev.PriorClaimCount); ok {
		flags = append(flags, flag)
	}
	if flag, ok := financialMotive(ev.ClaimedDamagePct, ev.CalculatedPct); ok {
		flags = append(flags, flag)
	}
	if flag, ok := lowAnalyzerConfidence(ev.AnalyzerConfidence); ok {
		flags = append(flags, flag)
	}

	score := baselineScore
	if len(flags) > 0 {
		score = 0
		for _, f := range flags {
			score += severityWeights[f.Severity] * f.Confidence
		}
		if score > 1 {
			score = 1
		}
	}

	return Report{
		Score:                 score,
		Flags:                 flags,
		InvestigationRequired: score > investigationThreshold,
	}
}

// metadataScarcity fires when fewer than half the images carry at least
// three metadata fields.
func metadataScarcity(metadata []exif.Metadata) (Flag, bool) {
	if len(metadata) == 0 {
		return Flag{}, false
	}

	rich := 0
	for _, m := range metadata {
		if m.FieldCount >= 3 {
			rich++
		}
	}
	if rich*2 >= len(metadata) {
		return Flag{}, false
	}

	return Flag{
		Category:   CategoryAuthenticity,
		Severity:   SeverityMedium,
		Detail:     fmt.Sprintf("only %d of %d images carry usable metadata", rich, len(metadata)),
		Confidence: 0.6,
	}, true
}

func coordinateMismatches(results []coords.Result) []Flag {
	var flags []Flag
	for i, r := range results {
		if !r.Available || r.DistanceM <= coordMismatchThresholdM {
			continue
		}
		flags = append(flags, Flag{
			Category:   CategoryLocation,
			Severity:   SeverityCritical,
			Detail:     fmt.Sprintf("image %d taken %.0f m from claimed location", i+1, r.DistanceM),
			Confidence: 0.9,
		})
	}
	return flags
}

func editingSoftware(metadata []exif.Metadata) []Flag {
	var flags []Flag
	for i, m := range metadata {
		software := strings.ToLower(m.Software)
		if software == "" {
			continue
		}
		for _, editor := range knownEditors {
			if strings.Contains(software, editor) {
				flags = append(flags, Flag{
					Category:   CategoryAuthenticity,
					Severity:   SeverityHigh,
					Detail:     fmt.Sprintf("image %d processed with %s", i+1, m.Software),
					Confidence: 0.75,
				})
				break
			}
		}
	}
	return flags
}

// claimFrequency fires above three prior claims, with confidence growing
// by 0.1 per claim over the threshold, capped at 0.9.
func claimFrequency(priorClaims int) (Flag, bool) {
	if priorClaims <= 3 {
		return Flag{}, false
	}

	confidence := 0.5 + 0.1*float64(priorClaims-3)
	if confidence > 0.9 {
		confidence = 0.9
	}

	return Flag{
		Category:   CategoryPattern,
		Severity:   SeverityMedium,
		Detail:     fmt.Sprintf("%d prior claims on record", priorClaims),
		Confidence: confidence,
	}, true
}

func financialMotive(claimedPct, calculatedPct float64) (Flag, bool) {
	if claimedPct <= calculatedPct+20 {
		return Flag{}, false
	}
	return Flag{
		Category:   CategoryFinancial,
		Severity:   SeverityHigh,
		Detail:     fmt.Sprintf("claimed %.0f%% damage against calculated %.0f%%", claimedPct, calculatedPct),
		Confidence: 0.7,
	}, true
}

func lowAnalyzerConfidence(confidence float64) (Flag, bool) {
	if confidence >= 0.5 {
		return Flag{}, false
	}
	return Flag{
		Category:   CategoryAuthenticity,
		Severity:   SeverityMedium,
		Detail:     fmt.Sprintf("damage analyzer confidence %.2f suggests unclear or staged evidence", confidence),
		Confidence: 0.6,
	}, true
}
