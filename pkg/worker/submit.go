package worker

import (
	"context"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Submit queues fn and returns the future of its outcome.
// It never waits for fn to run. After Shutdown it fails with
// types.ErrPoolStopped and nothing is queued.
func Submit[R any](p *ThreadPool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return SubmitContext(p, func(context.Context) (R, error) { return fn() })
}

// SubmitContext is Submit for functions that honour the pool's task context,
// which is cancelled by a forced ShutdownContext.
func SubmitContext[R any](p *ThreadPool, fn func(ctx context.Context) (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}

	c := newCell(fn, p.config.Clock)
	if err := p.enqueue(c); err != nil {
		return nil, err
	}
	return c.future, nil
}

// SubmitValue queues a function that cannot fail
func SubmitValue[R any](p *ThreadPool, fn func() R) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return SubmitContext(p, func(context.Context) (R, error) { return fn(), nil })
}

// Submit1 binds a to fn at submission time.
// Arguments are copied; pass a pointer or slice to share state with the task.
func Submit1[A, R any](p *ThreadPool, fn func(A) (R, error), a A) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return SubmitContext(p, func(context.Context) (R, error) { return fn(a) })
}

// Submit2 binds a and b to fn at submission time
func Submit2[A, B, R any](p *ThreadPool, fn func(A, B) (R, error), a A, b B) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return SubmitContext(p, func(context.Context) (R, error) { return fn(a, b) })
}

// Submit3 binds a, b and c to fn at submission time
func Submit3[A, B, C, R any](p *ThreadPool, fn func(A, B, C) (R, error), a A, b B, c C) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return SubmitContext(p, func(context.Context) (R, error) { return fn(a, b, c) })
}
