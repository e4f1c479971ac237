// Package resilience provides bounded retry helpers for outbound calls.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how many times a call is attempted and how long to
// wait between attempts.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Zero or negative means 3.
	MaxAttempts int

	// Backoff is the delay before the first retry. Zero retries immediately.
	Backoff time.Duration

	// MaxBackoff caps the delay. Zero means 30s.
	MaxBackoff time.Duration

	// Multiplier scales the delay after each retry. Zero or negative means 2.
	Multiplier float64

	// JitterFraction adds ± random jitter as a fraction of the delay.
	JitterFraction float64

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means IsTransient.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry with the attempt that failed.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns three attempts with no delay between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		MaxBackoff:  30 * time.Second,
		Multiplier:  2.0,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted, or ctx is done. The last error is returned.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions that return a value. The zero value is returned
// on failure.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.ShouldRetry(err) || attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		if err := Sleep(ctx, computeBackoff(attempt-1, cfg)); err != nil {
			break
		}
	}
	return zero, lastErr
}

// AlwaysRetry retries every non-nil error.
func AlwaysRetry(err error) bool { return err != nil }

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.JitterFraction < 0 {
		cfg.JitterFraction = 0
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = IsTransient
	}
	return cfg
}

func computeBackoff(retry int, cfg RetryConfig) time.Duration {
	if cfg.Backoff == 0 {
		return 0
	}
	delay := float64(cfg.Backoff) * math.Pow(cfg.Multiplier, float64(retry))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	if cfg.JitterFraction > 0 {
		span := delay * cfg.JitterFraction
		delay += (rand.Float64()*2 - 1) * span
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter
// case. A non-positive d only checks ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryLogger returns an OnRetry callback that logs each failed attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
