package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

func TestWithRetry_SucceedsWithoutRetryOnFirstAttempt(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_DoesNotRetryNonTransientErrors(t *testing.T) {
	calls := 0
	permanent := apierr.New(apierr.BackendPermanent, "model crashed")
	err := withRetry(context.Background(), 3, func(ctx context.Context) error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, apierr.Is(err, apierr.BackendPermanent))
}

func TestWithRetry_CancelledContextStopsBeforeRetry(t *testing.T) {
	calls := 0
	transient := apierr.New(apierr.BackendTransient, "backend overloaded")

	// Pre-cancel the context so the inter-attempt backoff returns
	// immediately via ctx.Done() instead of sleeping for real.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 3, func(ctx context.Context) error {
		calls++
		return transient
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetry_LastAttemptReturnsUnderlyingErrorWithoutWaiting(t *testing.T) {
	calls := 0
	transient := apierr.New(apierr.BackendTransient, "still overloaded")

	err := withRetry(context.Background(), 1, func(ctx context.Context) error {
		calls++
		return transient
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, apierr.Is(err, apierr.BackendTransient))
}

func TestWithRetry_ZeroMaxAttemptsTreatedAsOne(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 0, func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
