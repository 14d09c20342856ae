package util

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs fn up to maxRetries+1 times, doubling the wait
// between attempts starting at one second. fn is given the 0-indexed
// attempt number and signals success by returning nil. Context
// cancellation is honored between attempts, never mid-attempt.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		// No wait after the final attempt
		if attempt == maxRetries {
			break
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		backoff := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
