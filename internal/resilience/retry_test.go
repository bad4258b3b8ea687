package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/appstorewatch/insights/internal/errors"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      20 * time.Millisecond,
		BackoffFactor: 2.0,
		RetryableErrors: func(err error) bool {
			return apperrors.IsRetryableError(err)
		},
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(), func() error {
		attempts++
		if attempts < 3 {
			return apperrors.NewExternalAPIError("analytics", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(), func() error {
		attempts++
		return apperrors.NewValidationError("bad input")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(), func() error {
		attempts++
		return apperrors.NewExternalAPIError("analytics", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithConfig(ctx, fastRetryConfig(), func() error {
		return apperrors.NewExternalAPIError("analytics", nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWaitsLongerWhenRateLimited(t *testing.T) {
	config := fastRetryConfig()
	config.MaxAttempts = 2

	start := time.Now()
	err := RetryWithConfig(context.Background(), config, func() error {
		return apperrors.NewRateLimitError("1")
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	// The rate-limit delay floor kicks in, capped at MaxDelay; the generic
	// curve alone would wait about a millisecond
	assert.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
}
