// Package weather fetches daily observations for a claim's location and
// date, and scores how consistent the claimed damage cause is with what
// actually happened.
package weather

import (
	"context"
)

// Observation is one day of weather at the claim location. Success is
// false when no provider could deliver data; the rest of the fields are
// then zero and the claim degrades to the unverifiable branch.
type Observation struct {
	Date            string  `json:"date"`
	TempMinC        float64 `json:"temp_min_c"`
	TempMaxC        float64 `json:"temp_max_c"`
	TempAvgC        float64 `json:"temp_avg_c"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	HumidityPct     float64 `json:"humidity_pct"`
	WindSpeedKmh    float64 `json:"wind_speed_kmh"`
	Source          string  `json:"source"`
	Success         bool    `json:"success"`
}

// Provider fetches a daily observation for a coordinate and ISO date.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64, dateISO string) (Observation, error)
}
