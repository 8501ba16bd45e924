package worker

import (
	"sync"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// TaskQueue is an unbounded FIFO of pending tasks guarded by a single mutex.
//
// The stopping flag lives under the same mutex as the queue, so a waiter
// always re-checks "non-empty or stopping" against a consistent snapshot.
type TaskQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	tasks    []types.Task
	stopping bool
}

// NewTaskQueue creates an empty queue
func NewTaskQueue() *TaskQueue {
	q := &TaskQueue{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends a task and wakes one waiting worker.
// It fails with types.ErrPoolStopped once Stop has been called.
func (q *TaskQueue) Push(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}

	q.mu.Lock()
	if q.stopping {
		q.mu.Unlock()
		return types.ErrPoolStopped
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// Pop blocks until a task is available and returns it.
// It returns false when the queue is stopping and empty.
func (q *TaskQueue) Pop() (types.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && !q.stopping {
		q.notEmpty.Wait()
	}
	if len(q.tasks) == 0 {
		return nil, false
	}

	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, true
}

// Stop rejects further pushes and wakes every waiter.
// It reports whether this call performed the transition.
func (q *TaskQueue) Stop() bool {
	q.mu.Lock()
	first := !q.stopping
	q.stopping = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
	return first
}

// Drain removes and returns every pending task
func (q *TaskQueue) Drain() []types.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := q.tasks
	q.tasks = nil
	return tasks
}

// Len returns the number of pending tasks
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// IsStopping reports whether Stop has been called
func (q *TaskQueue) IsStopping() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopping
}
