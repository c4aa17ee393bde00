package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy defines retry behavior: the attempt budget, the delay before
// each re-attempt, and which errors are worth retrying at all.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff returns the delay after the given zero-based attempt.
	Backoff func(attempt int) time.Duration
	// Retryable reports whether an error should be retried. A nil
	// Retryable retries every error.
	Retryable func(err error) bool
}

// Operation is a unit of work executed under a retry policy.
type Operation func(ctx context.Context) error

// Do executes an operation under the given policy. Delays honor context
// cancellation. After the attempt budget is exhausted the last error is
// returned, wrapped with the attempt count.
func Do(ctx context.Context, policy Policy, op Operation) error {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			return err
		}

		// Don't wait after the last attempt
		if attempt == policy.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(policy.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}

// Exponential returns a backoff of base * factor^attempt.
func Exponential(base time.Duration, factor float64) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
	}
}

// UniformRandom returns a backoff drawn uniformly from [min, max] on
// every attempt.
func UniformRandom(min, max time.Duration) func(int) time.Duration {
	return func(int) time.Duration {
		if max <= min {
			return min
		}
		return min + time.Duration(rand.Int63n(int64(max-min)+1))
	}
}
