package weather

import (
	"fmt"
	"strings"
	"time"
)

// Assessment scores how well the observed weather supports the claimed
// damage cause. Score starts at 1.0 and loses a penalty per
// contradiction, floored at 0.
type Assessment struct {
	Score          float64  `json:"score"`
	Inconsistent   bool     `json:"inconsistent"`
	SupportsClaim  bool     `json:"supports_claim"`
	Verifiable     bool     `json:"verifiable"`
	Contradictions []string `json:"contradictions,omitempty"`
}

// Penalty constants per contradiction. Starker contradictions cost more.
const (
	penaltyFloodNoRain      = 0.4
	penaltyDroughtHeavyRain = 0.5
	penaltyDroughtSomeRain  = 0.25
	penaltyStormNoWind      = 0.3
	penaltyHeatMild         = 0.3
	penaltyColdWarm         = 0.3
	penaltySeasonal         = 0.2

	unverifiableScore = 0.5
)

// Monsoon months for the seasonal drought cross-check.
var wetMonths = map[time.Month]bool{
	time.June:      true,
	time.July:      true,
	time.August:    true,
	time.September: true,
}

// AssessConsistency compares the claimed cause text against the fetched
// observation. A failed fetch is treated as not verifiable, never as
// evidence against the claim.
func AssessConsistency(obs Observation, claimText string) Assessment {
	if !obs.Success {
		return Assessment{
			Score:        unverifiableScore,
			Inconsistent: false,
			Verifiable:   false,
		}
	}

	text := strings.ToLower(claimText)
	score := 1.0
	var contradictions []string

	penalize := func(penalty float64, reason string) {
		score -= penalty
		contradictions = append(contradictions, reason)
	}

	if matchesAny(text, "flood", "flooding", "waterlog", "heavy rain", "rain damage") {
		if obs.PrecipitationMM < 5 {
			penalize(penaltyFloodNoRain,
				fmt.Sprintf("flood claimed but only %.1f mm precipitation observed", obs.PrecipitationMM))
		}
	}

	if matchesAny(text, "drought", "dry spell", "water scarcity", "no rain") {
		switch {
		case obs.PrecipitationMM > 15:
			penalize(penaltyDroughtHeavyRain,
				fmt.Sprintf("drought claimed but %.1f mm precipitation observed", obs.PrecipitationMM))
		case obs.PrecipitationMM > 6:
			penalize(penaltyDroughtSomeRain,
				fmt.Sprintf("drought claimed with %.1f mm precipitation observed", obs.PrecipitationMM))
		}

		if month := observationMonth(obs); month != 0 && wetMonths[month] && obs.PrecipitationMM > 10 {
			penalize(penaltySeasonal,
				fmt.Sprintf("drought claimed in wet month %s with %.1f mm rain", month, obs.PrecipitationMM))
		}
	}

	if matchesAny(text, "storm", "cyclone", "hail", "wind damage", "gale") {
		if obs.WindSpeedKmh > 0 && obs.WindSpeedKmh < 20 {
			penalize(penaltyStormNoWind,
				fmt.Sprintf("storm claimed but wind speed was %.1f km/h", obs.WindSpeedKmh))
		}
	}

	if matchesAny(text, "heat", "heatwave", "scorch", "sun damage") {
		if obs.TempMaxC < 30 {
			penalize(penaltyHeatMild,
				fmt.Sprintf("heat damage claimed but max temperature was %.1f C", obs.TempMaxC))
		}
	}

	if matchesAny(text, "frost", "freeze", "cold", "chilling") {
		if obs.TempMinC > 10 {
			penalize(penaltyColdWarm,
				fmt.Sprintf("cold damage claimed but min temperature was %.1f C", obs.TempMinC))
		}
	}

	if score < 0 {
		score = 0
	}

	return Assessment{
		Score:          score,
		Inconsistent:   len(contradictions) > 0,
		SupportsClaim:  len(contradictions) == 0,
		Verifiable:     true,
		Contradictions: contradictions,
	}
}

func matchesAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func observationMonth(obs Observation) time.Month {
	t, err := time.Parse("2006-01-02", obs.Date)
	if err != nil {
		return 0
	}
	return t.Month()
}
