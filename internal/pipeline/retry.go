package pipeline

import (
	"context"
	"time"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

// backoffBase is the initial delay for the exponential backoff applied to
// BackendTransient failures, per spec.md §4.3/§5: "retried with exponential
// backoff up to K attempts within a file".
const backoffBase = 500 * time.Millisecond

// transcribeFn performs one transcription attempt.
type transcribeFn func(ctx context.Context) error

// withRetry calls fn up to maxAttempts times, retrying only when fn returns
// an apierr.BackendTransient error, backing off 2^(attempt-1) * backoffBase
// between attempts. Any other error (including BackendPermanent) returns
// immediately without retrying.
func withRetry(ctx context.Context, maxAttempts int, fn transcribeFn) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !apierr.Is(err, apierr.BackendTransient) || attempt == maxAttempts {
			return err
		}

		delay := backoffBase * time.Duration(1<<uint(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
