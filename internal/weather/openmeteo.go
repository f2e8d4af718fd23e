package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/agrolens/claimverify/pkg/httpclient"
)

const openMeteoDaily = "temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_mean"

// OpenMeteo is the primary provider. It needs no API key.
type OpenMeteo struct {
	client *httpclient.Client
}

// NewOpenMeteo creates the provider against the given base URL.
func NewOpenMeteo(baseURL string, timeout time.Duration) *OpenMeteo {
	return &OpenMeteo{
		client: httpclient.NewClientWithOptions(baseURL,
			httpclient.WithDefaultRetry(),
			httpclient.WithTimeout(timeout),
		),
	}
}

func (o *OpenMeteo) Name() string { return "open_meteo" }

type openMeteoResponse struct {
	Daily struct {
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		HumidityMean     []*float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// Fetch retrieves the daily aggregates for one date.
func (o *OpenMeteo) Fetch(ctx context.Context, lat, lon float64, dateISO string) (Observation, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.6f", lat))
	params.Set("longitude", fmt.Sprintf("%.6f", lon))
	params.Set("start_date", dateISO)
	params.Set("end_date", dateISO)
	params.Set("daily", openMeteoDaily)
	params.Set("timezone", "auto")

	body, err := o.client.Get(ctx, "/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return Observation{}, fmt.Errorf("open-meteo: %w", err)
	}

	var resp openMeteoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Observation{}, fmt.Errorf("open-meteo: decode response: %w", err)
	}

	tMin := firstValue(resp.Daily.TemperatureMin)
	tMax := firstValue(resp.Daily.TemperatureMax)
	if resp.Daily.TemperatureMin == nil && resp.Daily.TemperatureMax == nil {
		return Observation{}, fmt.Errorf("open-meteo: no daily data for %s", dateISO)
	}

	return Observation{
		Date:            dateISO,
		TempMinC:        tMin,
		TempMaxC:        tMax,
		TempAvgC:        (tMin + tMax) / 2,
		PrecipitationMM: firstValue(resp.Daily.PrecipitationSum),
		HumidityPct:     firstValue(resp.Daily.HumidityMean),
		Source:          o.Name(),
		Success:         true,
	}, nil
}

func firstValue(values []*float64) float64 {
	if len(values) == 0 || values[0] == nil {
		return 0
	}
	return *values[0]
}
