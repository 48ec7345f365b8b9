// Package retry wraps fallible, potentially slow external calls with bounded
// attempts, a fixed inter-attempt delay, and a hard per-attempt timeout.
// Acquisition is the main consumer: extraction runs against remote sources
// that can hang or fail transiently.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Policy configures the invoker. MaxAttempts must be at least 1.
type Policy struct {
	MaxAttempts    int
	Delay          time.Duration // Fixed pause between attempts
	AttemptTimeout time.Duration // Hard wall-clock bound per attempt
}

// Validate rejects unusable policies.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt timeout must be positive, got %v", p.AttemptTimeout)
	}
	return nil
}

// ExhaustionError is returned when every attempt failed. It carries the last
// underlying error for the failure report.
type ExhaustionError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustionError) Unwrap() error { return e.LastErr }

// IsExhausted reports whether err is an attempt-exhaustion failure.
func IsExhausted(err error) bool {
	var ee *ExhaustionError
	return errors.As(err, &ee)
}

type attemptResult[T any] struct {
	value T
	err   error
}

// Do runs op until it succeeds, the policy's attempts are exhausted, or ctx
// is cancelled. The first success short-circuits remaining attempts.
//
// Each attempt runs on its own goroutine under a context that expires after
// Policy.AttemptTimeout. When the timeout elapses the caller moves on
// immediately; the attempt's context is cancelled so a well-behaved op winds
// down, and the result channel is buffered so the goroutine can always exit
// even if its result is discarded.
func Do[T any](ctx context.Context, p Policy, logger *zap.Logger, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := p.Validate(); err != nil {
		return zero, err
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		value, err := runAttempt(ctx, p.AttemptTimeout, op)
		if err == nil {
			return value, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		lastErr = err
		logger.Warn("attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Error(err))

		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, &ExhaustionError{Attempts: p.MaxAttempts, LastErr: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan attemptResult[T], 1)
	go func() {
		value, err := op(attemptCtx)
		results <- attemptResult[T]{value: value, err: err}
	}()

	select {
	case r := <-results:
		return r.value, r.err
	case <-attemptCtx.Done():
		var zero T
		return zero, fmt.Errorf("attempt timed out after %v: %w", timeout, attemptCtx.Err())
	}
}
