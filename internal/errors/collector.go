// Package errors collects task failures reported through a pool's error handler
package errors

import (
	stderrors "errors"
	"sync"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Category classifies a reported failure
type Category int

const (
	// CategoryTask is an error returned by the task itself
	CategoryTask Category = iota
	// CategoryPanic is a recovered task panic
	CategoryPanic
	// CategoryDiscarded is a task dropped before it ran
	CategoryDiscarded
)

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case CategoryTask:
		return "Task"
	case CategoryPanic:
		return "Panic"
	case CategoryDiscarded:
		return "Discarded"
	default:
		return "Unknown"
	}
}

// Classify returns the category of err
func Classify(err error) Category {
	switch {
	case stderrors.Is(err, types.ErrTaskPanicked):
		return CategoryPanic
	case stderrors.Is(err, types.ErrTaskDiscarded):
		return CategoryDiscarded
	default:
		return CategoryTask
	}
}

// Collector records failures and keeps up to a fixed number of them.
// Handle has the types.ErrorHandler signature and can be installed as
// PoolConfig.ErrorHandler.
type Collector struct {
	mu        sync.RWMutex
	maxErrors int
	errors    []error
	counts    map[Category]int64
}

// NewCollector creates a collector retaining at most maxErrors errors.
// A non-positive maxErrors keeps only the counts.
func NewCollector(maxErrors int) *Collector {
	return &Collector{
		maxErrors: maxErrors,
		counts:    make(map[Category]int64),
	}
}

// Handle records err and returns it unchanged
func (c *Collector) Handle(err error) error {
	if err == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[Classify(err)]++
	if len(c.errors) < c.maxErrors {
		c.errors = append(c.errors, err)
	}
	return err
}

// Count returns the number of failures seen in category
func (c *Collector) Count(category Category) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[category]
}

// Total returns the number of failures seen
func (c *Collector) Total() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Errors returns a copy of the retained errors, oldest first
func (c *Collector) Errors() []error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Reset clears counts and retained errors
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = nil
	c.counts = make(map[Category]int64)
}
