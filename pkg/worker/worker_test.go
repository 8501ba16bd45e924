package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jzx17/gothreadpool/internal/testutils"
	"github.com/jzx17/gothreadpool/pkg/types"
)

func TestNewWorker(t *testing.T) {
	worker := NewWorker(1, NewTaskQueue())

	assert.Equal(t, 1, worker.ID())
	assert.Equal(t, WorkerStateIdle, worker.State())
}

func TestWorkerState(t *testing.T) {
	assert.Equal(t, "idle", WorkerStateIdle.String())
	assert.Equal(t, "working", WorkerStateWorking.String())
	assert.Equal(t, "stopped", WorkerStateStopped.String())
	assert.Equal(t, "unknown", WorkerState(999).String())
}

func TestWorker_RunsUntilQueueStops(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)

	go worker.Start(context.Background())

	var executed int64
	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Push(NewBasicTask(func(ctx context.Context) error {
			atomic.AddInt64(&executed, 1)
			return nil
		})))
	}

	queue.Stop()
	testutils.RequireClosedWithin(t, worker.Done(), time.Second)

	assert.Equal(t, int64(5), atomic.LoadInt64(&executed))
	assert.Equal(t, WorkerStateStopped, worker.State())
	assert.Equal(t, int64(5), worker.Stats().TotalProcessed)
}

func TestWorker_WaitsWhileQueueEmpty(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)

	go worker.Start(context.Background())
	testutils.RequireOpenFor(t, worker.Done(), 20*time.Millisecond)

	queue.Stop()
	testutils.RequireClosedWithin(t, worker.Done(), time.Second)
}

func TestWorker_ErrorHandling(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)

	var handled []error
	worker.SetErrorHandler(func(err error) error {
		handled = append(handled, err)
		return nil
	})

	taskErr := errors.New("task failed")
	require.NoError(t, queue.Push(NewBasicTask(func(ctx context.Context) error { return taskErr })))
	require.NoError(t, queue.Push(NewBasicTask(func(ctx context.Context) error { return nil })))
	queue.Stop()

	worker.Start(context.Background())

	require.Len(t, handled, 1)
	assert.Same(t, taskErr, handled[0])

	stats := worker.Stats()
	assert.Equal(t, int64(1), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalFailed)
	assert.InDelta(t, 0.5, stats.GetSuccessRate(), 0.0001)
}

func TestWorker_PanicRecovery(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(7, queue)

	var handled error
	worker.SetErrorHandler(func(err error) error {
		handled = err
		return nil
	})

	c := newCell(func(ctx context.Context) (int, error) {
		panic("boom")
	}, nil)
	require.NoError(t, queue.Push(c))

	var after int64
	require.NoError(t, queue.Push(NewBasicTask(func(ctx context.Context) error {
		atomic.StoreInt64(&after, 1)
		return nil
	})))
	queue.Stop()

	worker.Start(context.Background())

	_, err := c.future.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTaskPanicked)
	assert.Contains(t, err.Error(), "boom")

	var taskErr *types.TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, c.ID(), taskErr.TaskID)
	assert.Equal(t, 7, taskErr.Context["worker_id"])
	assert.NotEmpty(t, taskErr.Context["stack_trace"])

	assert.Same(t, err, handled)
	assert.Equal(t, int64(1), atomic.LoadInt64(&after), "worker must survive a panicking task")
}

func TestWorker_StatsUseClock(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clock := testutils.NewClockWrapper(mock)

	queue := NewTaskQueue()
	worker := NewWorkerWithClock(1, queue, clock)

	var durations []time.Duration
	worker.SetCompletionCallback(func(d time.Duration, failed bool) {
		assert.False(t, failed)
		durations = append(durations, d)
	})

	ctx := context.Background()
	require.NoError(t, queue.Push(NewBasicTask(func(ctx context.Context) error {
		mock.Advance(5 * time.Millisecond).MustWait(ctx)
		return nil
	})))
	queue.Stop()

	worker.Start(ctx)

	require.Len(t, durations, 1)
	assert.Equal(t, 5*time.Millisecond, durations[0])
	assert.Equal(t, mock.Now().Add(-5*time.Millisecond).UnixNano(), worker.Stats().LastTaskTime.UnixNano())
}

func TestWorker_RateLimiterCancelled(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)
	// one token, refilled once per hour: the second task has to wait
	worker.SetRateLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))

	first := newCell(func(ctx context.Context) (int, error) { return 1, nil }, nil)
	second := newCell(func(ctx context.Context) (int, error) { return 2, nil }, nil)
	require.NoError(t, queue.Push(first))
	require.NoError(t, queue.Push(second))
	queue.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Start(ctx)

	value, err := first.future.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	cancel()

	_, err = second.future.Get()
	assert.ErrorIs(t, err, types.ErrTaskDiscarded)
	testutils.RequireClosedWithin(t, worker.Done(), time.Second)
	assert.Equal(t, int64(1), worker.Stats().TotalFailed)
}

func TestWorker_RateLimiterUsesAbortContext(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)
	worker.SetRateLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))

	abort, stop := context.WithCancel(context.Background())
	worker.SetAbortContext(abort)

	// the task context is already cancelled; it must not end the limiter wait
	taskCtx, cancel := context.WithCancel(context.Background())
	cancel()

	first := newCell(func(ctx context.Context) (int, error) { return 1, nil }, nil)
	second := newCell(func(ctx context.Context) (int, error) { return 2, nil }, nil)
	require.NoError(t, queue.Push(first))
	require.NoError(t, queue.Push(second))
	queue.Stop()

	go worker.Start(taskCtx)

	value, err := first.future.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, value)
	testutils.RequireOpenFor(t, second.future.Done(), 20*time.Millisecond, "second task should still be paced")

	stop()

	_, err = second.future.Get()
	assert.ErrorIs(t, err, types.ErrTaskDiscarded)
	testutils.RequireClosedWithin(t, worker.Done(), time.Second)
}

func TestWorker_PanickingErrorHandler(t *testing.T) {
	queue := NewTaskQueue()
	worker := NewWorker(1, queue)
	worker.SetErrorHandler(func(err error) error {
		panic("handler bug")
	})

	failing := newCell(func(ctx context.Context) (int, error) { return 0, errors.New("boom") }, nil)
	after := newCell(func(ctx context.Context) (int, error) { return 2, nil }, nil)
	require.NoError(t, queue.Push(failing))
	require.NoError(t, queue.Push(after))
	queue.Stop()

	worker.Start(context.Background())

	_, err := failing.future.Get()
	assert.EqualError(t, err, "boom")
	value, err := after.future.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, value)

	stats := worker.Stats()
	assert.Equal(t, int64(1), stats.TotalFailed)
	assert.Equal(t, int64(1), stats.TotalProcessed)
}
