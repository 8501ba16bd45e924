/*
Package retry resubmits failed tasks to a worker pool.

The pool itself never retries: a task error is stored in the task's future
and handed back to the caller. Resubmit is the caller-side loop that waits
for the future, consults a Policy and, after the policy's backoff, submits a
fresh task.

# Backoff

	backoff := retry.NewExponentialBackoff(10*time.Millisecond,
		retry.WithBackoffMaxDelay(time.Second),
		retry.WithBackoffJitter(retry.EqualJitter),
	)

# Resubmission

	policy := retry.NewPolicy(5, backoff)
	body, err := retry.Resubmit(ctx, pool, policy, func(ctx context.Context) ([]byte, error) {
		return fetch(ctx, url)
	})
	if errors.Is(err, types.ErrRetriesExhausted) {
		// every attempt failed; err also wraps the last task error
	}

Pool errors (ErrPoolStopped, ErrTaskDiscarded, ErrResultConsumed) and
context cancellation are never retried.
*/
package retry
