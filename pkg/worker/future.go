package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Future is the read side of a submitted task's outcome.
//
// The executing worker writes it exactly once; the submitter reads it exactly
// once. A second successful read returns types.ErrResultConsumed, which is
// never produced by a task itself.
type Future[R any] struct {
	id    string
	clock types.Clock

	completed atomic.Bool
	done      chan struct{}

	// written before done is closed, read after
	value R
	err   error

	mu       sync.Mutex
	consumed bool
}

func newFuture[R any](id string, clock types.Clock) *Future[R] {
	if clock == nil {
		clock = types.NewRealClock()
	}
	return &Future[R]{
		id:    id,
		clock: clock,
		done:  make(chan struct{}),
	}
}

// complete settles the future; only the first call has an effect
func (f *Future[R]) complete(value R, err error) bool {
	if !f.completed.CompareAndSwap(false, true) {
		return false
	}
	f.value = value
	f.err = err
	close(f.done)
	return true
}

// ID returns the ID of the task behind this future
func (f *Future[R]) ID() string {
	return f.id
}

// Done returns a channel that is closed once the outcome is available
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the outcome is available without blocking
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the task finished and returns its value or error
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.consume()
}

// GetWithTimeout is Get bounded by timeout. On expiry it returns
// types.ErrTimeout and the result stays available for a later call.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	if f.IsReady() {
		return f.consume()
	}
	if timeout <= 0 {
		var zero R
		return zero, types.ErrTimeout
	}

	timer := f.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.consume()
	case <-timer.C():
		var zero R
		return zero, types.ErrTimeout
	}
}

// GetContext is Get bounded by ctx. On cancellation it returns ctx.Err()
// and the result stays available for a later call.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	if f.IsReady() {
		return f.consume()
	}

	select {
	case <-f.done:
		return f.consume()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (f *Future[R]) consume() (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero R
	if f.consumed {
		return zero, types.ErrResultConsumed
	}
	f.consumed = true

	value, err := f.value, f.err
	f.value, f.err = zero, nil
	return value, err
}
