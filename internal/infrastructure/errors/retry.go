package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// RetryLogger receives retry progress messages
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // Maximum number of attempts, including the first
	InitialDelay    time.Duration // Delay before the second attempt
	MaxDelay        time.Duration // Upper bound for any delay
	BackoffFactor   float64       // Exponential backoff factor
	Jitter          bool          // Add up to 25% jitter to each delay
	RetryableErrors []ErrorCode   // Codes worth another attempt
	Logger          RetryLogger   // Optional
}

// DefaultRetryConfig returns the configuration used for journal writes
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeConnection,
			ErrCodeTimeout,
			ErrCodeTransaction,
			ErrCodeBusy,
		},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

func (c *RetryConfig) logf(format string, v ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

// WithRetry runs operation until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done.
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return WithRetryContext(ctx, config, operation, "")
}

// WithRetryContext is WithRetry with an operation name for log messages and errors
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	name := operationName
	if name == "" {
		name = "operation"
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				config.logf("%s succeeded after %d attempts", name, attempt+1)
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, config) {
			config.logf("%s failed with non-retryable error: %v", name, err)
			return err
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)
		config.logf("%s failed (attempt %d/%d), retrying in %v: %v", name, attempt+1, config.MaxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled during retry: %w", name, ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, config.MaxAttempts, lastErr)
}

func shouldRetry(err error, config *RetryConfig) bool {
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsRetryable() {
		return false
	}
	return slices.Contains(config.RetryableErrors, repoErr.Code)
}

func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for range attempt {
		multiplier *= config.BackoffFactor
	}
	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	if config.Jitter && delay > 0 {
		if jitter := time.Duration(float64(delay) * 0.25); jitter > 0 {
			delay += time.Duration(time.Now().UnixNano() % int64(jitter))
		}
	}

	return min(delay, config.MaxDelay)
}
