package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"
	"golang.org/x/time/rate"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// PoolConfig defines configuration for the thread pool
type PoolConfig struct {
	// PoolSize is the number of workers; it must be positive
	PoolSize int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler observes every failed task (optional)
	ErrorHandler types.ErrorHandler

	// RateLimiter throttles task starts across all workers (optional)
	RateLimiter *rate.Limiter

	// BaseContext is the parent of the context handed to tasks (optional)
	BaseContext context.Context
}

// DefaultPoolConfig returns default configuration with one worker per CPU
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		PoolSize: runtime.NumCPU(),
		Clock:    types.NewRealClock(),
	}
}

func validateConfig(config *PoolConfig) error {
	if config.PoolSize <= 0 {
		return errorc.With(types.ErrInvalidPoolSize,
			errorc.String("pool_size", strconv.Itoa(config.PoolSize)))
	}
	if l := config.RateLimiter; l != nil && l.Limit() != rate.Inf && l.Burst() < 1 {
		return errorc.With(types.ErrInvalidConfig,
			errorc.String("rate_limiter", "burst must be at least 1"))
	}
	return nil
}

// ThreadPool is a fixed-size FIFO worker pool.
//
// Workers start in the constructor and run until Shutdown. Shutdown lets them
// drain every task that was accepted before it was called.
type ThreadPool struct {
	config  PoolConfig
	queue   *TaskQueue
	workers []*Worker

	// task context; cancelled after the workers are joined or on forced shutdown
	ctx    context.Context
	cancel context.CancelFunc

	// ends rate limiter waits; only shutdown cancels it, whatever BaseContext does
	abortCtx context.Context
	abort    context.CancelFunc

	state        int32 // types.PoolState
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	stopped      chan struct{}

	// statistics
	submitted     int64
	completed     int64
	failed        int64
	discarded     int64
	totalExecTime int64 // nanoseconds
}

// NewThreadPool creates a pool and starts its workers
func NewThreadPool(config *PoolConfig) (*ThreadPool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}
	cfg := *config

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}

	pool := &ThreadPool{
		config:  cfg,
		queue:   NewTaskQueue(),
		workers: make([]*Worker, cfg.PoolSize),
		stopped: make(chan struct{}),
	}
	pool.ctx, pool.cancel = context.WithCancel(context.WithValue(cfg.BaseContext, poolKey{}, pool))
	pool.abortCtx, pool.abort = context.WithCancel(context.Background())

	for i := 0; i < cfg.PoolSize; i++ {
		w := NewWorkerWithClock(i, pool.queue, cfg.Clock)
		if cfg.ErrorHandler != nil {
			w.SetErrorHandler(cfg.ErrorHandler)
		}
		if cfg.RateLimiter != nil {
			w.SetRateLimiter(cfg.RateLimiter)
			w.SetAbortContext(pool.abortCtx)
		}
		w.SetCompletionCallback(pool.recordCompletion)
		pool.workers[i] = w

		pool.wg.Add(1)
		go func(w *Worker) {
			defer pool.wg.Done()
			w.Start(pool.ctx)
		}(w)
	}

	return pool, nil
}

// NewThreadPoolWithSize creates a pool of size workers with default settings
func NewThreadPoolWithSize(size int) (*ThreadPool, error) {
	config := DefaultPoolConfig()
	config.PoolSize = size
	return NewThreadPool(config)
}

// Execute queues a prebuilt task. Its error is only seen by the ErrorHandler.
func (p *ThreadPool) Execute(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}
	return p.enqueue(task)
}

func (p *ThreadPool) enqueue(task types.Task) error {
	if err := p.queue.Push(task); err != nil {
		return err
	}
	atomic.AddInt64(&p.submitted, 1)
	return nil
}

// poolKey marks the context handed to this pool's tasks
type poolKey struct{}

// Shutdown stops accepting tasks, waits for the workers to drain the queue
// and joins them. Concurrent and repeated calls all return once the pool is
// fully stopped.
//
// Shutdown must not be called from one of the pool's own tasks: it would wait
// for the calling worker and never return. A task uses ShutdownContext with
// its own context instead.
func (p *ThreadPool) Shutdown() {
	_ = p.ShutdownContext(context.Background())
}

// ShutdownContext behaves like Shutdown until ctx is done. It then discards
// the tasks still queued (their futures fail with types.ErrTaskDiscarded),
// cancels the context of running tasks and keeps waiting for the workers to
// return. A running task that ignores its context still delays the return.
//
// Called with the context of one of the pool's own tasks, it starts the
// shutdown and returns types.ErrShutdownFromTask without waiting.
func (p *ThreadPool) ShutdownContext(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		atomic.StoreInt32(&p.state, int32(types.StateStopping))
		p.queue.Stop()

		go func() {
			p.wg.Wait()
			atomic.StoreInt32(&p.state, int32(types.StateStopped))
			p.abort()
			p.cancel()
			close(p.stopped)
		}()
	})

	if owner, _ := ctx.Value(poolKey{}).(*ThreadPool); owner == p {
		return types.ErrShutdownFromTask
	}

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		select {
		case <-p.stopped:
			return nil
		default:
		}
	}

	p.discardQueued()
	p.abort()
	p.cancel()
	<-p.stopped
	return ctx.Err()
}

// Close shuts the pool down; it is meant for defer
func (p *ThreadPool) Close() error {
	p.Shutdown()
	return nil
}

func (p *ThreadPool) discardQueued() {
	for _, task := range p.queue.Drain() {
		if c, ok := task.(completer); ok {
			c.fail(types.NewTaskError("pool", task.ID(), types.ErrTaskDiscarded))
		}
		atomic.AddInt64(&p.discarded, 1)
	}
}

func (p *ThreadPool) recordCompletion(d time.Duration, failed bool) {
	if failed {
		atomic.AddInt64(&p.failed, 1)
	} else {
		atomic.AddInt64(&p.completed, 1)
	}
	atomic.AddInt64(&p.totalExecTime, int64(d))
}

// Size returns the number of workers
func (p *ThreadPool) Size() int {
	return p.config.PoolSize
}

// State returns the lifecycle state
func (p *ThreadPool) State() types.PoolState {
	return types.PoolState(atomic.LoadInt32(&p.state))
}

// IsRunning checks if the pool still accepts tasks
func (p *ThreadPool) IsRunning() bool {
	return p.State() == types.StateRunning
}

// IsStopped checks if every worker has been joined
func (p *ThreadPool) IsStopped() bool {
	return p.State() == types.StateStopped
}

// QueueLength gets the number of tasks waiting for a worker
func (p *ThreadPool) QueueLength() int {
	return p.queue.Len()
}

// Stats gets pool statistics
func (p *ThreadPool) Stats() types.PoolStats {
	var activeWorkers int
	for _, w := range p.workers {
		if w.Stats().IsActive() {
			activeWorkers++
		}
	}

	return types.PoolStats{
		PoolSize:           p.config.PoolSize,
		ActiveWorkers:      activeWorkers,
		QueueLength:        p.queue.Len(),
		Submitted:          atomic.LoadInt64(&p.submitted),
		Completed:          atomic.LoadInt64(&p.completed),
		Failed:             atomic.LoadInt64(&p.failed),
		Discarded:          atomic.LoadInt64(&p.discarded),
		TotalExecutionTime: time.Duration(atomic.LoadInt64(&p.totalExecTime)),
		State:              p.State(),
	}
}

// WorkerStats gets statistics of all workers
func (p *ThreadPool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}
