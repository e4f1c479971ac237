package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttemptsWithoutDelay(t *testing.T) {
	var calls int
	cfg := DefaultRetryConfig()
	cfg.ShouldRetry = AlwaysRetry

	start := time.Now()
	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, 3, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), RetryConfig{MaxAttempts: 3}, func(_ context.Context) error {
		calls++
		return errors.New("permanent error: bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_TransientRetried(t *testing.T) {
	var calls int
	err := Do(context.Background(), RetryConfig{MaxAttempts: 3}, func(_ context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("temporary"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := RetryConfig{
		MaxAttempts: 5,
		Backoff:     50 * time.Millisecond,
		ShouldRetry: AlwaysRetry,
	}

	err := Do(ctx, cfg, func(_ context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("fail")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := RetryConfig{
		MaxAttempts: 3,
		ShouldRetry: AlwaysRetry,
		OnRetry: func(attempt int, _ error) {
			attempts = append(attempts, attempt)
		},
	}

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return errors.New("fail")
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal_ReturnsValueOnSuccess(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.ShouldRetry = AlwaysRetry

	var calls int
	val, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("fail")
		}
		return "hello", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestDoVal_ReturnsZeroOnFailure(t *testing.T) {
	val, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 2, ShouldRetry: AlwaysRetry},
		func(_ context.Context) (int, error) {
			return 42, errors.New("fail")
		})
	require.Error(t, err)
	assert.Zero(t, val)
}

func TestComputeBackoff(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		Backoff:    100 * time.Millisecond,
		MaxBackoff: 500 * time.Millisecond,
		Multiplier: 2.0,
	})

	assert.Equal(t, 100*time.Millisecond, computeBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, computeBackoff(1, cfg))
	assert.Equal(t, 400*time.Millisecond, computeBackoff(2, cfg))
	assert.Equal(t, 500*time.Millisecond, computeBackoff(3, cfg))
}

func TestComputeBackoff_ZeroMeansImmediate(t *testing.T) {
	cfg := applyDefaults(RetryConfig{JitterFraction: 0.5})
	assert.Zero(t, computeBackoff(0, cfg))
	assert.Zero(t, computeBackoff(4, cfg))
}

func TestComputeBackoff_WithJitter(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		Backoff:        time.Second,
		JitterFraction: 0.5,
	})
	for i := 0; i < 50; i++ {
		d := computeBackoff(0, cfg)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestRetryLogger(t *testing.T) {
	logger := RetryLogger("openwebui", "chat_completion")
	logger(1, errors.New("test error"))
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}
