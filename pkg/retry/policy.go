package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// RetryCondition decides whether a task error is worth another submission
type RetryCondition func(error) bool

// Policy describes how a failed task is resubmitted
type Policy struct {
	// MaxAttempts is the total number of submissions, including the first
	MaxAttempts int

	// Backoff computes the pause before each resubmission (optional, no pause)
	Backoff BackoffStrategy

	// Condition filters retryable errors (optional, DefaultRetryCondition)
	Condition RetryCondition

	// Clock for the pauses (optional, defaults to real clock)
	Clock types.Clock
}

// NewPolicy creates a policy with the default retry condition
func NewPolicy(maxAttempts int, backoff BackoffStrategy) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		Condition:   DefaultRetryCondition,
		Clock:       types.NewRealClock(),
	}
}

// DefaultRetryCondition retries every task error except pool infrastructure
// errors and context cancellation
func DefaultRetryCondition(err error) bool {
	if err == nil || types.IsPoolError(err) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ShouldRetry reports whether attempt (1-based, already failed) may be followed by another
func (p *Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	return p.retryable(err)
}

// retryable applies the condition; pool errors are final whatever it says
func (p *Policy) retryable(err error) bool {
	if types.IsPoolError(err) {
		return false
	}
	condition := p.Condition
	if condition == nil {
		condition = DefaultRetryCondition
	}
	return condition(err)
}

// delay returns the pause before the resubmission that follows attempt
func (p *Policy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.NextDelay(attempt)
}

func (p *Policy) clock() types.Clock {
	if p.Clock == nil {
		return types.NewRealClock()
	}
	return p.Clock
}
