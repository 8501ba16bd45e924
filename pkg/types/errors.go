// Package types defines error types shared by the pool, its futures and the retry helpers
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolStopped indicates a submission after shutdown was requested
	ErrPoolStopped = errors.New("thread pool is stopped")

	// ErrInvalidPoolSize indicates a non-positive worker count
	ErrInvalidPoolSize = errors.New("invalid pool size")

	// ErrInvalidConfig indicates an unusable pool configuration
	ErrInvalidConfig = errors.New("invalid pool configuration")

	// ErrResultConsumed indicates a second read of an already consumed future
	ErrResultConsumed = errors.New("future result already consumed")

	// ErrTimeout indicates operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrNilTask indicates a nil task or task function
	ErrNilTask = errors.New("task cannot be nil")

	// ErrTaskPanicked indicates the task function panicked
	ErrTaskPanicked = errors.New("task panicked")

	// ErrTaskDiscarded indicates a queued task was dropped by a forced shutdown before it ran
	ErrTaskDiscarded = errors.New("task discarded before execution")

	// ErrShutdownFromTask indicates a task tried to wait for its own pool to stop
	ErrShutdownFromTask = errors.New("shutdown called from a pool task")

	// ErrRetriesExhausted indicates every resubmission attempt failed
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// TaskError describes a failure that happened while a worker executed a task
type TaskError struct {
	// Operation is where the failure happened, e.g. "worker"
	Operation string

	// TaskID identifies the failed task
	TaskID string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed in %s: %v", e.TaskID, e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskError creates a new task error
func NewTaskError(operation, taskID string, cause error) *TaskError {
	return &TaskError{
		Operation: operation,
		TaskID:    taskID,
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// IsPoolError reports whether err comes from the pool infrastructure rather than from a task.
// Such errors are never worth resubmitting.
func IsPoolError(err error) bool {
	return errors.Is(err, ErrPoolStopped) ||
		errors.Is(err, ErrResultConsumed) ||
		errors.Is(err, ErrTaskDiscarded) ||
		errors.Is(err, ErrInvalidPoolSize) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrNilTask) ||
		errors.Is(err, ErrShutdownFromTask)
}
