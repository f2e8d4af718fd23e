package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/agrolens/claimverify/pkg/httpclient"
)

// ErrNoAPIKey marks a meteostat provider constructed without credentials.
var ErrNoAPIKey = errors.New("meteostat: api key not configured")

// Meteostat is the keyed secondary provider behind RapidAPI.
type Meteostat struct {
	client *httpclient.Client
	apiKey string
	host   string
}

// NewMeteostat creates the provider. host is the RapidAPI host header
// value, e.g. "meteostat.p.rapidapi.com".
func NewMeteostat(apiKey, host string, timeout time.Duration) *Meteostat {
	return &Meteostat{
		client: httpclient.NewClientWithOptions("https://"+host,
			httpclient.WithDefaultRetry(),
			httpclient.WithTimeout(timeout),
		),
		apiKey: apiKey,
		host:   host,
	}
}

// newMeteostatWithBaseURL is used by tests to point at a fake server.
func newMeteostatWithBaseURL(baseURL, apiKey, host string) *Meteostat {
	return &Meteostat{
		client: httpclient.NewClient(baseURL),
		apiKey: apiKey,
		host:   host,
	}
}

func (m *Meteostat) Name() string { return "meteostat" }

type meteostatResponse struct {
	Data []struct {
		TAvg *float64 `json:"tavg"`
		TMin *float64 `json:"tmin"`
		TMax *float64 `json:"tmax"`
		Prcp *float64 `json:"prcp"`
		RHum *float64 `json:"rhum"`
		WSpd *float64 `json:"wspd"`
	} `json:"data"`
}

// Fetch retrieves the daily row for one date.
func (m *Meteostat) Fetch(ctx context.Context, lat, lon float64, dateISO string) (Observation, error) {
	if m.apiKey == "" {
		return Observation{}, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("start", dateISO)
	params.Set("end", dateISO)

	headers := map[string]string{
		"x-rapidapi-key":  m.apiKey,
		"x-rapidapi-host": m.host,
	}

	body, err := m.client.Get(ctx, "/point/daily?"+params.Encode(), headers)
	if err != nil {
		return Observation{}, fmt.Errorf("meteostat: %w", err)
	}

	var resp meteostatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Observation{}, fmt.Errorf("meteostat: decode response: %w", err)
	}
	if len(resp.Data) == 0 {
		return Observation{}, fmt.Errorf("meteostat: no daily data for %s", dateISO)
	}

	row := resp.Data[0]
	tMin := deref(row.TMin)
	tMax := deref(row.TMax)
	tAvg := deref(row.TAvg)
	if tAvg == 0 && (tMin != 0 || tMax != 0) {
		tAvg = (tMin + tMax) / 2
	}

	return Observation{
		Date:            dateISO,
		TempMinC:        tMin,
		TempMaxC:        tMax,
		TempAvgC:        tAvg,
		PrecipitationMM: deref(row.Prcp),
		HumidityPct:     deref(row.RHum),
		WindSpeedKmh:    deref(row.WSpd),
		Source:          m.Name(),
		Success:         true,
	}, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
