package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines the backoff strategy interface
type BackoffStrategy interface {
	// NextDelay calculates the delay before attempt (1-based) is resubmitted
	NextDelay(attempt int) time.Duration
}

// JitterFunc jitter function type
type JitterFunc func(time.Duration) time.Duration

// FixedBackoff implements fixed backoff strategy
type FixedBackoff struct {
	delay  time.Duration
	jitter JitterFunc
}

// NewFixedBackoff creates a fixed backoff strategy
func NewFixedBackoff(delay time.Duration, opts ...BackoffOption) *FixedBackoff {
	o := applyBackoffOptions(opts)
	return &FixedBackoff{
		delay:  delay,
		jitter: o.jitter,
	}
}

// NextDelay calculates the delay for the next retry
func (b *FixedBackoff) NextDelay(attempt int) time.Duration {
	delay := b.delay
	if b.jitter != nil {
		delay = b.jitter(delay)
	}
	return delay
}

// ExponentialBackoff implements exponential backoff strategy
type ExponentialBackoff struct {
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
	jitter       JitterFunc
}

// NewExponentialBackoff creates an exponential backoff strategy.
// Defaults: multiplier 2, max delay 30s, no jitter.
func NewExponentialBackoff(initialDelay time.Duration, opts ...BackoffOption) *ExponentialBackoff {
	o := applyBackoffOptions(opts)
	b := &ExponentialBackoff{
		initialDelay: initialDelay,
		multiplier:   2.0,
		maxDelay:     30 * time.Second,
		jitter:       o.jitter,
	}
	if o.multiplier != nil {
		b.multiplier = *o.multiplier
	}
	if o.maxDelay != nil {
		b.maxDelay = *o.maxDelay
	}
	return b
}

// NextDelay calculates the delay for the next retry
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt-1))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	result := time.Duration(delay)
	if b.jitter != nil {
		result = b.jitter(result)
	}
	return result
}

// FullJitter full jitter function - random within [0, delay) range
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay)))
}

// EqualJitter equal jitter function - delay/2 + random(0, delay/2)
func EqualJitter(delay time.Duration) time.Duration {
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + time.Duration(rand.Int63n(int64(half)))
}

// BackoffOption configures a backoff strategy
type BackoffOption func(*backoffOptions)

type backoffOptions struct {
	multiplier *float64
	maxDelay   *time.Duration
	jitter     JitterFunc
}

func applyBackoffOptions(opts []BackoffOption) backoffOptions {
	var o backoffOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithBackoffMultiplier sets backoff multiplier (exponential backoff only)
func WithBackoffMultiplier(multiplier float64) BackoffOption {
	return func(o *backoffOptions) { o.multiplier = &multiplier }
}

// WithBackoffMaxDelay sets maximum delay time (exponential backoff only)
func WithBackoffMaxDelay(maxDelay time.Duration) BackoffOption {
	return func(o *backoffOptions) { o.maxDelay = &maxDelay }
}

// WithBackoffJitter sets jitter function
func WithBackoffJitter(jitter JitterFunc) BackoffOption {
	return func(o *backoffOptions) { o.jitter = jitter }
}
