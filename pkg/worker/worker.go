package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents a worker waiting on the queue
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents a worker running a task
	WorkerStateWorking
	// WorkerStateStopped represents a worker that has exited its loop
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker runs the fetch-execute loop against a TaskQueue
type Worker struct {
	id    int
	state int32 // atomic state
	queue *TaskQueue
	done  chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64
	lastTaskTime   int64 // Unix nanosecond timestamp

	errorHandler       types.ErrorHandler
	completionCallback func(time.Duration, bool)
	limiter            *rate.Limiter
	abort              context.Context

	clock types.Clock

	mu sync.RWMutex
}

// NewWorker creates a new Worker with default real clock
func NewWorker(id int, queue *TaskQueue) *Worker {
	return NewWorkerWithClock(id, queue, types.NewRealClock())
}

// NewWorkerWithClock creates a new Worker with specified clock
func NewWorkerWithClock(id int, queue *TaskQueue, clock types.Clock) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}

	return &Worker{
		id:    id,
		state: int32(WorkerStateIdle),
		queue: queue,
		done:  make(chan struct{}),
		clock: clock,
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Done returns a channel closed when the worker loop has returned
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// SetErrorHandler sets the error handler
func (w *Worker) SetErrorHandler(handler types.ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// SetCompletionCallback sets the task completion callback
func (w *Worker) SetCompletionCallback(callback func(time.Duration, bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.completionCallback = callback
}

// SetRateLimiter throttles task starts; nil disables throttling
func (w *Worker) SetRateLimiter(limiter *rate.Limiter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.limiter = limiter
}

// SetAbortContext sets the context that ends a rate limiter wait. When it is
// unset the wait ends with the task context.
func (w *Worker) SetAbortContext(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abort = ctx
}

// Start runs the worker loop until the queue is stopping and empty.
// ctx is handed to every task; cancelling it does not end the loop.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)
	defer atomic.StoreInt32(&w.state, int32(WorkerStateStopped))

	for {
		task, ok := w.queue.Pop()
		if !ok {
			return
		}
		w.processTask(ctx, task)
	}
}

// processTask processes a single task
func (w *Worker) processTask(ctx context.Context, task types.Task) {
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

	w.mu.RLock()
	limiter := w.limiter
	abort := w.abort
	callback := w.completionCallback
	w.mu.RUnlock()

	if abort == nil {
		abort = ctx
	}

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	var err error
	if limiter != nil {
		err = limiter.Wait(abort)
	}
	if err != nil {
		err = types.NewTaskError("worker", task.ID(), fmt.Errorf("%w: %w", types.ErrTaskDiscarded, err))
		if c, ok := task.(completer); ok {
			c.fail(err)
		}
	} else {
		err = w.executeTask(ctx, task)
	}

	executionTime := w.clock.Since(startTime)

	failed := err != nil
	if failed {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}

	if callback != nil {
		callback(executionTime, failed)
	}
}

// executeTask executes a task with panic recovery support
func (w *Worker) executeTask(ctx context.Context, task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			err = types.NewTaskError("worker", task.ID(), fmt.Errorf("%w: %v", types.ErrTaskPanicked, r)).
				WithContext("stack_trace", string(buf[:n])).
				WithContext("worker_id", w.id)

			if c, ok := task.(completer); ok {
				c.fail(err)
			}
		}
	}()

	return task.Execute(ctx)
}

func (w *Worker) handleError(err error) {
	w.mu.RLock()
	handler := w.errorHandler
	w.mu.RUnlock()

	if handler == nil {
		return
	}

	// a panicking handler must not take the worker down
	defer func() {
		_ = recover()
	}()
	_ = handler(err)
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		LastTaskTime:   time.Unix(0, atomic.LoadInt64(&w.lastTaskTime)),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
	LastTaskTime   time.Time
}

// IsActive checks if Worker is active
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateWorking
}

// GetSuccessRate gets the success rate
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}
