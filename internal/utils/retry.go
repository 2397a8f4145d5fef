package utils

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff func(attempt int) time.Duration

// LinearBackoff waits base * attempt.
func LinearBackoff(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// ExponentialBackoff waits initial * factor^(attempt-1), capped at max, plus up
// to 10% jitter.
func ExponentialBackoff(initial, max time.Duration, factor float64) Backoff {
	return func(attempt int) time.Duration {
		delay := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
		if delay > max {
			delay = max
		}
		if jitterRange := int64(delay) / 10; jitterRange > 0 {
			delay += time.Duration(rand.Int63n(jitterRange))
		}
		return delay
	}
}

// RetryConfig holds the configuration for the retry mechanism.
type RetryConfig struct {
	MaxAttempts int
	Backoff     Backoff
	// Timeout bounds each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
	// RetryableErrors are lowercase substrings of retryable error messages.
	// A nil list retries every error.
	RetryableErrors []string
	// OnRetry is called before sleeping ahead of the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// RetryableFunc defines the signature for operations that can be retried.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// DefaultRetryConfig is used for outbound notifications such as job callbacks.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(1*time.Second, 5*time.Second, 2.0),
		Timeout:     30 * time.Second,
		RetryableErrors: []string{
			"timeout",
			"connection reset",
			"rate limit",
			"connection refused",
			"eof",
			"status 5", // 5xx responses
		},
	}
}

// IsRetryableError checks if the given error is retryable based on defined patterns.
func IsRetryableError(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	if patterns == nil {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(errMsg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// WithRetry executes the given operation with retries based on the provided config.
// Sleeps between attempts end early when ctx is cancelled.
func WithRetry[T any](ctx context.Context, operation RetryableFunc[T], config RetryConfig) (T, error) {
	var lastErr error
	var zero T

	attempts := max(config.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := runAttempt(ctx, operation, config.Timeout)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt == attempts {
			break
		}

		if !IsRetryableError(err, config.RetryableErrors) {
			break
		}

		var delay time.Duration
		if config.Backoff != nil {
			delay = config.Backoff(attempt)
		}
		if config.OnRetry != nil {
			config.OnRetry(attempt, err, delay)
		}

		if err := Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, operation RetryableFunc[T], timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return operation(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return operation(attemptCtx)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
