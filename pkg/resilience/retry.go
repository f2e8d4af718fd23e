package resilience

import (
	"context"
	"time"

	"github.com/agrolens/claimverify/pkg/logger"
	"go.uber.org/zap"
)

// Operation is a unit of work that can be retried.
type Operation func(ctx context.Context) (interface{}, error)

// RetryConfig controls retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// RetryableChecker decides whether an error is worth retrying.
	// When nil, every error is retried.
	RetryableChecker func(error) bool
}

// DefaultRetryConfig returns a conservative retry configuration suitable
// for external provider calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Retry executes op up to MaxAttempts times with exponential backoff.
// It returns the first success, the last error once attempts are exhausted,
// immediately on a non-retryable error, or the context error if the context
// is done while backing off.
func Retry(ctx context.Context, config RetryConfig, op Operation) (interface{}, error) {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.BackoffMultiplier <= 1 {
		config.BackoffMultiplier = 2
	}

	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if config.RetryableChecker != nil && !config.RetryableChecker(err) {
			return nil, err
		}
		if attempt == config.MaxAttempts {
			break
		}

		logger.Debug("retrying operation",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if config.MaxBackoff > 0 && backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return nil, lastErr
}
