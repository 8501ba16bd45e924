package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// Resubmit runs fn on pool and, while it keeps failing with a retryable
// error, submits a fresh task after the policy's backoff. The pool never
// retries by itself; this is the caller-side loop.
//
// The returned error wraps types.ErrRetriesExhausted together with the last
// task error when every attempt failed.
func Resubmit[R any](ctx context.Context, pool *worker.ThreadPool, policy *Policy, fn func(ctx context.Context) (R, error)) (R, error) {
	var zero R
	if policy == nil || policy.MaxAttempts <= 0 {
		return zero, errorc.With(types.ErrInvalidConfig,
			errorc.String("retry_policy", "max attempts must be positive"))
	}

	for attempt := 1; ; attempt++ {
		future, err := worker.SubmitContext(pool, fn)
		if err != nil {
			return zero, err
		}

		value, err := future.GetContext(ctx)
		if err == nil {
			return value, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if !policy.ShouldRetry(err, attempt) {
			if attempt >= policy.MaxAttempts && policy.retryable(err) {
				return zero, fmt.Errorf("%w after %d attempts: %w", types.ErrRetriesExhausted, attempt, err)
			}
			return zero, err
		}
		if err := sleep(ctx, policy.clock(), policy.delay(attempt)); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, clock types.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
