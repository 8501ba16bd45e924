// Package worker provides a fixed-size FIFO worker pool with future-based results
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

func nextTaskID() string {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return fmt.Sprintf("task-%d", id)
}

// BasicTask adapts a plain function to types.Task for fire-and-forget execution
type BasicTask struct {
	id string
	fn func(ctx context.Context) error
}

// NewBasicTask creates a new basic task
func NewBasicTask(fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: nextTaskID(),
		fn: fn,
	}
}

// NewBasicTaskWithID creates a basic task with custom ID
func NewBasicTaskWithID(id string, fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: id,
		fn: fn,
	}
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return fmt.Errorf("task %s has no execution function", t.id)
	}
	return t.fn(ctx)
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

// completer is implemented by tasks that own a result handle which must be
// settled even when the task never returns normally (panic, discard).
type completer interface {
	fail(err error)
}

// cell is the queued form of a typed submission: the bound call plus the
// future that receives its outcome.
type cell[R any] struct {
	id     string
	call   func(ctx context.Context) (R, error)
	future *Future[R]
}

func newCell[R any](call func(ctx context.Context) (R, error), clock types.Clock) *cell[R] {
	id := nextTaskID()
	return &cell[R]{
		id:     id,
		call:   call,
		future: newFuture[R](id, clock),
	}
}

// Execute runs the call and publishes its outcome
func (c *cell[R]) Execute(ctx context.Context) error {
	value, err := c.call(ctx)
	c.future.complete(value, err)
	return err
}

// ID returns the task ID
func (c *cell[R]) ID() string {
	return c.id
}

func (c *cell[R]) fail(err error) {
	var zero R
	c.future.complete(zero, err)
}
