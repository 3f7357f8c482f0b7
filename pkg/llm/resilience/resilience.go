// Package resilience provides call-boundary policies for external model
// capabilities: a per-call timeout where a timed-out call is retried once
// and then fails.
package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is used when a caller passes a non-positive timeout.
const DefaultTimeout = 60 * time.Second

// Do runs fn under a per-call timeout. A call that exceeds the timeout is
// retried exactly once; a second timeout, or any non-timeout error, fails
// the call. Cancellation of the parent context is never retried.
func Do[T any](ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	result, err := attempt(ctx, timeout, fn)
	if err == nil || !isTimeout(ctx, err) {
		return result, err
	}

	zap.S().Warnw("call timed out, retrying once", "call", name, "timeout", timeout)
	return attempt(ctx, timeout, fn)
}

func attempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

// isTimeout reports whether err is a per-call deadline rather than a
// cancellation of the parent context.
func isTimeout(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}
