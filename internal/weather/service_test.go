package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/pkg/common"
)

type fakeProvider struct {
	name  string
	obs   Observation
	err   error
	calls int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, lat, lon float64, dateISO string) (Observation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return Observation{}, f.err
	}
	obs := f.obs
	obs.Date = dateISO
	obs.Source = f.name
	obs.Success = true
	return obs, nil
}

var testLoc = geo.Point{Lat: 19.0760, Lon: 72.8777}

func TestFetchPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "primary", obs: Observation{PrecipitationMM: 12}}
	secondary := &fakeProvider{name: "secondary"}
	svc := NewServiceWithProviders(primary, secondary)

	obs, err := svc.Fetch(context.Background(), testLoc, "2026-07-14")

	require.NoError(t, err)
	assert.True(t, obs.Success)
	assert.Equal(t, "primary", obs.Source)
	assert.Equal(t, int32(0), atomic.LoadInt32(&secondary.calls))
}

func TestFetchFallsBackToSecondary(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("primary down")}
	secondary := &fakeProvider{name: "secondary", obs: Observation{TempMaxC: 34}}
	svc := NewServiceWithProviders(primary, secondary)

	obs, err := svc.Fetch(context.Background(), testLoc, "2026-07-14")

	require.NoError(t, err)
	assert.True(t, obs.Success)
	assert.Equal(t, "secondary", obs.Source)
	assert.Equal(t, int32(1), atomic.LoadInt32(&primary.calls))
}

func TestFetchAllProvidersFailPreservesBothErrors(t *testing.T) {
	primaryErr := errors.New("primary down")
	secondaryErr := errors.New("secondary down")
	svc := NewServiceWithProviders(
		&fakeProvider{name: "primary", err: primaryErr},
		&fakeProvider{name: "secondary", err: secondaryErr},
	)

	obs, err := svc.Fetch(context.Background(), testLoc, "2026-07-14")

	assert.False(t, obs.Success)
	require.Error(t, err)
	assert.ErrorIs(t, err, primaryErr)
	assert.ErrorIs(t, err, secondaryErr)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.KindExternalService, appErr.Kind)
}

func TestFetchCachesPerLocationAndDate(t *testing.T) {
	primary := &fakeProvider{name: "primary", obs: Observation{PrecipitationMM: 3}}
	svc := NewServiceWithProviders(primary)

	_, err := svc.Fetch(context.Background(), testLoc, "2026-07-14")
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), testLoc, "2026-07-14")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&primary.calls))

	_, err = svc.Fetch(context.Background(), testLoc, "2026-07-15")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&primary.calls))
}

func TestOpenMeteoFetchParsesDailyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "2026-07-14", r.URL.Query().Get("start_date"))
		assert.Contains(t, r.URL.Query().Get("daily"), "precipitation_sum")
		w.Write([]byte(`{
			"daily": {
				"temperature_2m_max": [34.2],
				"temperature_2m_min": [26.1],
				"precipitation_sum": [18.5],
				"relative_humidity_2m_mean": [82.0]
			}
		}`))
	}))
	defer server.Close()

	provider := NewOpenMeteo(server.URL, 10*time.Second)
	obs, err := provider.Fetch(context.Background(), testLoc.Lat, testLoc.Lon, "2026-07-14")

	require.NoError(t, err)
	assert.True(t, obs.Success)
	assert.Equal(t, "open_meteo", obs.Source)
	assert.InDelta(t, 34.2, obs.TempMaxC, 1e-9)
	assert.InDelta(t, 26.1, obs.TempMinC, 1e-9)
	assert.InDelta(t, 30.15, obs.TempAvgC, 1e-9)
	assert.InDelta(t, 18.5, obs.PrecipitationMM, 1e-9)
	assert.InDelta(t, 82.0, obs.HumidityPct, 1e-9)
}

func TestOpenMeteoFetchMissingDailyDataFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewOpenMeteo(server.URL, 10*time.Second)
	_, err := provider.Fetch(context.Background(), testLoc.Lat, testLoc.Lon, "2026-07-14")

	assert.Error(t, err)
}

func TestMeteostatFetchParsesDailyRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/point/daily", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Rapidapi-Key"))
		w.Write([]byte(`{
			"data": [{"tavg": 28.5, "tmin": 24.0, "tmax": 33.0, "prcp": 2.2, "rhum": 65.0, "wspd": 14.0}]
		}`))
	}))
	defer server.Close()

	provider := newMeteostatWithBaseURL(server.URL, "test-key", "meteostat.p.rapidapi.com")
	obs, err := provider.Fetch(context.Background(), testLoc.Lat, testLoc.Lon, "2026-07-14")

	require.NoError(t, err)
	assert.True(t, obs.Success)
	assert.Equal(t, "meteostat", obs.Source)
	assert.InDelta(t, 28.5, obs.TempAvgC, 1e-9)
	assert.InDelta(t, 14.0, obs.WindSpeedKmh, 1e-9)
}

func TestMeteostatWithoutKeyFails(t *testing.T) {
	provider := newMeteostatWithBaseURL("http://unused", "", "meteostat.p.rapidapi.com")
	_, err := provider.Fetch(context.Background(), testLoc.Lat, testLoc.Lon, "2026-07-14")

	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestMeteostatEmptyDataFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	provider := newMeteostatWithBaseURL(server.URL, "test-key", "meteostat.p.rapidapi.com")
	_, err := provider.Fetch(context.Background(), testLoc.Lat, testLoc.Lon, "2026-07-14")

	assert.Error(t, err)
}
