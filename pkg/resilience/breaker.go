package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/agrolens/claimverify/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when a breaker rejects an execution.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings are the primitive tuning knobs for a circuit breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// Breaker wraps a gobreaker.CircuitBreaker with metrics and an optional
// fallback for when the circuit is open.
type Breaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewBreaker constructs a circuit breaker from Settings. A nil fallback
// defaults to NoopFallback.
func NewBreaker(settings Settings, fallback FallbackFunc) *Breaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: settings.Interval,
		Timeout:  settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		MaxRequests: settings.SuccessThreshold,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			recordBreakerStateChange(name, from, to)
		},
	})

	recordBreakerState(name, cb.State())

	return &Breaker{name: name, cb: cb, fallback: fallback}
}

// Execute runs op through the breaker. When the breaker is open the
// fallback decides the result instead of the operation.
func (b *Breaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	recordBreakerRequest(b.name)

	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(b.name)
		return b.fallback(ctx, ErrCircuitOpen)
	}
	if err != nil {
		recordBreakerFailure(b.name)
	}

	return result, err
}

// State reports the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// BuildSettings produces a Settings struct from primitive tuning knobs.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if failureThreshold <= 0 {
		failureThreshold = 5
	}

	if successThreshold <= 0 {
		successThreshold = 1
	}

	return Settings{
		Name:             name,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: uint32(failureThreshold),
		SuccessThreshold: uint32(successThreshold),
	}
}
