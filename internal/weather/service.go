package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/config"
	"github.com/agrolens/claimverify/pkg/logger"
	"github.com/agrolens/claimverify/pkg/resilience"
)

// Service runs the provider fallback chain. Observations are cached for
// the lifetime of the service so one claim never fetches twice.
type Service struct {
	providers []Provider
	breakers  map[string]*resilience.Breaker

	mu    sync.Mutex
	cache map[string]Observation
}

// NewService builds the fallback chain from configuration: open-meteo
// first, meteostat second when a RapidAPI key is present.
func NewService(cfg config.WeatherConfig) *Service {
	providers := []Provider{
		NewOpenMeteo(cfg.OpenMeteoBaseURL, cfg.RequestTimeout),
	}
	if cfg.RapidAPIKey != "" {
		providers = append(providers, NewMeteostat(cfg.RapidAPIKey, cfg.RapidAPIHost, cfg.RequestTimeout))
	}
	return NewServiceWithProviders(providers...)
}

// NewServiceWithProviders builds a Service over an explicit chain.
func NewServiceWithProviders(providers ...Provider) *Service {
	breakers := make(map[string]*resilience.Breaker, len(providers))
	for _, p := range providers {
		settings := resilience.BuildSettings("weather-"+p.Name(), 60, 30, 3, 1)
		breakers[p.Name()] = resilience.NewBreaker(settings, resilience.GracefulDegradation(p.Name()))
	}
	return &Service{
		providers: providers,
		breakers:  breakers,
		cache:     make(map[string]Observation),
	}
}

// Fetch walks the provider chain and returns the first successful
// observation. When every provider fails the Observation has
// Success=false and the returned error carries the external_service
// kind, wrapping every underlying failure; callers degrade instead of
// aborting.
func (s *Service) Fetch(ctx context.Context, loc geo.Point, dateISO string) (Observation, error) {
	key := fmt.Sprintf("%.6f:%.6f:%s", loc.Lat, loc.Lon, dateISO)

	s.mu.Lock()
	if obs, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return obs, nil
	}
	s.mu.Unlock()

	var errs []error
	for _, p := range s.providers {
		obs, err := s.fetchOne(ctx, p, loc, dateISO)
		if err != nil {
			logger.Warn("weather provider failed",
				zap.String("provider", p.Name()),
				zap.String("date", dateISO),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}

		s.mu.Lock()
		s.cache[key] = obs
		s.mu.Unlock()
		return obs, nil
	}

	joined := errors.Join(errs...)
	return Observation{Date: dateISO, Success: false},
		common.NewExternalServiceError("every weather provider failed", joined.Error()).Wrap(joined)
}

func (s *Service) fetchOne(ctx context.Context, p Provider, loc geo.Point, dateISO string) (Observation, error) {
	result, err := s.breakers[p.Name()].Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return p.Fetch(ctx, loc.Lat, loc.Lon, dateISO)
	})
	if err != nil {
		return Observation{}, err
	}
	return result.(Observation), nil
}
