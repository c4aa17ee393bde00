package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediate(int) time.Duration { return 0 }

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	// Arrange
	attempts := 0
	policy := Policy{MaxAttempts: 5, Backoff: immediate}

	// Act
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	// Arrange
	attempts := 0
	policy := Policy{MaxAttempts: 5, Backoff: immediate}

	// Act
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsBudgetAndWrapsLastError(t *testing.T) {
	// Arrange
	attempts := 0
	lastErr := errors.New("still broken")
	policy := Policy{MaxAttempts: 5, Backoff: immediate}

	// Act
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		return lastErr
	})

	// Assert
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	assert.ErrorIs(t, err, lastErr)
	assert.Contains(t, err.Error(), "after 5 attempts")
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	// Arrange
	attempts := 0
	fatal := errors.New("fatal")
	policy := Policy{
		MaxAttempts: 5,
		Backoff:     immediate,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	// Act
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		return fatal
	})

	// Assert
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestDo_HonorsContextCancellation(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := Policy{MaxAttempts: 5, Backoff: immediate}

	// Act
	err := Do(ctx, policy, func(ctx context.Context) error {
		return errors.New("never retried")
	})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_CancellationDuringBackoff(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Minute },
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	// Act
	start := time.Now()
	err := Do(ctx, policy, func(ctx context.Context) error {
		return errors.New("transient")
	})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExponential(t *testing.T) {
	backoff := Exponential(time.Second, 2.0)

	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(3))
}

func TestUniformRandom_StaysWithinBounds(t *testing.T) {
	backoff := UniformRandom(time.Second, 5*time.Second)

	for i := 0; i < 100; i++ {
		d := backoff(i)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}
