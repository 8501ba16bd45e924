// Package types defines core interfaces and types shared by the worker pool packages
package types

import (
	"context"
	"time"
)

// Task is a type-erased unit of deferred work.
// Implementations route their own outcome (value or error) to whoever awaits it;
// the returned error is only reported to the pool's ErrorHandler.
type Task interface {
	// Execute runs the task
	Execute(ctx context.Context) error

	// ID returns the task ID
	ID() string
}

// WorkerPool defines the worker pool interface
type WorkerPool interface {
	// Execute queues a prebuilt task without waiting for it
	Execute(task Task) error

	// Shutdown stops accepting tasks, drains the queue and joins every worker
	Shutdown()

	// ShutdownContext is Shutdown bounded by ctx; on expiry queued tasks are discarded
	ShutdownContext(ctx context.Context) error

	// Close is Shutdown in io.Closer form
	Close() error

	// Size returns the number of workers
	Size() int

	// Stats returns worker pool statistics
	Stats() PoolStats
}

// PoolState is the lifecycle state of a pool
type PoolState int32

const (
	// StateRunning means the pool accepts tasks
	StateRunning PoolState = iota
	// StateStopping means shutdown was requested and workers are draining
	StateStopping
	// StateStopped means every worker has been joined
	StateStopped
)

// String returns the string representation of PoolState
func (s PoolState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// PoolStats defines statistics for worker pools
type PoolStats struct {
	// PoolSize is the number of workers
	PoolSize int

	// ActiveWorkers is the number of workers currently running a task
	ActiveWorkers int

	// QueueLength is the number of tasks waiting for a worker
	QueueLength int

	// Submitted is the number of tasks accepted into the queue
	Submitted int64

	// Completed is the number of tasks that finished without error
	Completed int64

	// Failed is the number of tasks that returned an error or panicked
	Failed int64

	// Discarded is the number of queued tasks dropped by a forced shutdown
	Discarded int64

	// TotalExecutionTime is the summed run time of finished tasks
	TotalExecutionTime time.Duration

	// State is the pool lifecycle state
	State PoolState
}

// AverageExecutionTime returns the mean run time of finished tasks
func (s PoolStats) AverageExecutionTime() time.Duration {
	finished := s.Completed + s.Failed
	if finished == 0 {
		return 0
	}
	return s.TotalExecutionTime / time.Duration(finished)
}

// ErrorHandler observes task failures; its return value is ignored by the pool
type ErrorHandler func(error) error
