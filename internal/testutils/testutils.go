// Package testutils provides helpers shared by the pool tests
package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig test configuration
type TestConfig struct {
	Timeout time.Duration
	Workers int
}

// TestContext bundles a test, its deadline and cleanup functions
type TestContext struct {
	t       *testing.T
	config  *TestConfig
	cleanup []func()
	mu      sync.Mutex
}

// NewTestContext creates new test context; cleanups run when the test ends
func NewTestContext(t *testing.T, config *TestConfig) *TestContext {
	if config == nil {
		config = &TestConfig{
			Timeout: 5 * time.Second,
			Workers: 4,
		}
	}

	tc := &TestContext{
		t:      t,
		config: config,
	}
	t.Cleanup(tc.Cleanup)
	return tc
}

// T returns testing.T instance
func (tc *TestContext) T() *testing.T {
	return tc.t
}

// Workers returns the configured worker count
func (tc *TestContext) Workers() int {
	return tc.config.Workers
}

// Context returns context with timeout
func (tc *TestContext) Context() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), tc.config.Timeout)
	tc.AddCleanup(cancel)
	return ctx
}

// AddCleanup adds cleanup function
func (tc *TestContext) AddCleanup(fn func()) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cleanup = append(tc.cleanup, fn)
}

// Cleanup executes cleanup functions in reverse order
func (tc *TestContext) Cleanup() {
	tc.mu.Lock()
	fns := tc.cleanup
	tc.cleanup = nil
	tc.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// RequireClosed fails the test unless ch is closed within the configured timeout
func (tc *TestContext) RequireClosed(ch <-chan struct{}, msgAndArgs ...interface{}) {
	tc.t.Helper()
	RequireClosedWithin(tc.t, ch, tc.config.Timeout, msgAndArgs...)
}

// AssertEventually waits for condition to be true
func (tc *TestContext) AssertEventually(condition func() bool, msgAndArgs ...interface{}) {
	tc.t.Helper()
	assert.Eventually(tc.t, condition, tc.config.Timeout, time.Millisecond, msgAndArgs...)
}

// RequireClosedWithin fails t unless ch is closed within timeout
func RequireClosedWithin(t testing.TB, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...interface{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.FailNow(t, "channel was not closed in time", msgAndArgs...)
	}
}

// RequireOpenFor fails t if ch is closed within d
func RequireOpenFor(t testing.TB, ch <-chan struct{}, d time.Duration, msgAndArgs ...interface{}) {
	t.Helper()
	select {
	case <-ch:
		require.FailNow(t, "channel closed unexpectedly", msgAndArgs...)
	case <-time.After(d):
	}
}
