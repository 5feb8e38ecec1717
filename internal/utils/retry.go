package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry executes fn up to maxAttempts times with exponential backoff.
// A maxAttempts of 1 runs fn exactly once. The wait between attempts is
// cut short when ctx is cancelled.
func Retry(ctx context.Context, maxAttempts int, initialDelay time.Duration, fn func() error) error {
	return RetryIf(ctx, maxAttempts, initialDelay, fn, nil)
}

// RetryIf is Retry with a predicate deciding whether an error is worth
// another attempt. A nil predicate retries every error.
func RetryIf(ctx context.Context, maxAttempts int, initialDelay time.Duration, fn func() error, shouldRetry func(error) bool) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if maxAttempts == 1 {
			return err
		}

		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}
