/*
Package worker provides a fixed-size, FIFO worker pool whose submissions return futures.

# Overview

A ThreadPool owns a TaskQueue and a fixed set of Workers started by the
constructor. Submissions wrap the caller's function, together with any bound
arguments, into a task cell, push it onto the queue and wake one idle worker.
The worker runs the cell and settles its Future; the caller reads the Future
whenever it wants the outcome.

# Core Components

## ThreadPool

- Fixed number of worker goroutines, chosen at construction (PoolSize must be positive)
- Unbounded FIFO queue; submitting never waits for task execution
- Drain-to-completion Shutdown that joins every worker
- ShutdownContext for a bounded shutdown that discards queued work
- Pool and per-worker statistics

## Worker

- Blocks on the queue until a task arrives or the pool stops
- Recovers panics and turns them into errors wrapping types.ErrTaskPanicked
- Optional start throttling through a golang.org/x/time/rate limiter

## Future

- Get blocks until the outcome is ready and returns it exactly once
- A second Get returns types.ErrResultConsumed, never a task error
- GetWithTimeout and GetContext give up without consuming the result

# Error Handling

Task errors never leave the worker loop. They are stored in the task's
Future and reported to PoolConfig.ErrorHandler. Submitting after Shutdown
fails synchronously with types.ErrPoolStopped. An invalid PoolSize fails the
constructor with types.ErrInvalidPoolSize.

# Usage Examples

Basic usage:

	pool, err := worker.NewThreadPoolWithSize(4)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	future, err := worker.Submit3(pool, partialSum, data, 0, len(data)/2)
	if err != nil {
		log.Fatal(err)
	}

	sum, err := future.Get()

Bounded wait:

	value, err := future.GetWithTimeout(time.Second)
	if errors.Is(err, types.ErrTimeout) {
		// still running; the result can be read later
	}

Bounded shutdown:

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.ShutdownContext(ctx); err != nil {
		log.Printf("queued tasks were discarded: %v", err)
	}
*/
package worker
