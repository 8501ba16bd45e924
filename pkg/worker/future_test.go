package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gothreadpool/pkg/types"
)

func TestFuture_Get(t *testing.T) {
	t.Run("blocks until completed", func(t *testing.T) {
		f := newFuture[string]("task-x", nil)
		assert.False(t, f.IsReady())

		go func() {
			time.Sleep(20 * time.Millisecond)
			f.complete("done", nil)
		}()

		value, err := f.Get()
		require.NoError(t, err)
		assert.Equal(t, "done", value)
		assert.True(t, f.IsReady())
	})

	t.Run("returns the original task error", func(t *testing.T) {
		taskErr := errors.New("task failed")
		f := newFuture[int]("task-y", nil)
		f.complete(7, taskErr)

		_, err := f.Get()
		assert.Same(t, taskErr, err)
	})

	t.Run("second read is distinct from task errors", func(t *testing.T) {
		taskErr := errors.New("task failed")
		f := newFuture[int]("task-z", nil)
		f.complete(0, taskErr)

		_, err := f.Get()
		assert.Same(t, taskErr, err)

		_, err = f.Get()
		assert.ErrorIs(t, err, types.ErrResultConsumed)
		assert.NotErrorIs(t, err, taskErr)
	})

	t.Run("second read after success", func(t *testing.T) {
		f := newFuture[int]("task-w", nil)
		f.complete(3, nil)

		value, err := f.Get()
		require.NoError(t, err)
		assert.Equal(t, 3, value)

		value, err = f.Get()
		assert.ErrorIs(t, err, types.ErrResultConsumed)
		assert.Zero(t, value)
	})
}

func TestFuture_CompleteOnce(t *testing.T) {
	f := newFuture[int]("task-once", nil)

	assert.True(t, f.complete(1, nil))
	assert.False(t, f.complete(2, errors.New("late")))

	value, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestFuture_ConcurrentReaders(t *testing.T) {
	f := newFuture[int]("task-race", nil)

	const readers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		values   int
		consumed int
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Get()
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, types.ErrResultConsumed) {
				consumed++
			} else if err == nil {
				values++
			}
		}()
	}

	f.complete(99, nil)
	wg.Wait()

	assert.Equal(t, 1, values)
	assert.Equal(t, readers-1, consumed)
}

func TestFuture_GetWithTimeout(t *testing.T) {
	t.Run("expires without consuming", func(t *testing.T) {
		f := newFuture[int]("task-slow", nil)

		_, err := f.GetWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, types.ErrTimeout)

		f.complete(5, nil)
		value, err := f.GetWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 5, value)
	})

	t.Run("zero timeout polls", func(t *testing.T) {
		f := newFuture[int]("task-poll", nil)

		_, err := f.GetWithTimeout(0)
		assert.ErrorIs(t, err, types.ErrTimeout)

		f.complete(8, nil)
		value, err := f.GetWithTimeout(0)
		require.NoError(t, err)
		assert.Equal(t, 8, value)
	})

	t.Run("completes before deadline", func(t *testing.T) {
		f := newFuture[int]("task-fast", nil)
		go f.complete(11, nil)

		value, err := f.GetWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 11, value)
	})
}

func TestFuture_GetContext(t *testing.T) {
	f := newFuture[string]("task-ctx", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GetContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	f.complete("ok", nil)

	// a ready result wins over a cancelled context
	value, err := f.GetContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestFuture_Done(t *testing.T) {
	f := newFuture[int]("task-done", nil)

	select {
	case <-f.Done():
		t.Fatal("done channel closed before completion")
	default:
	}

	f.complete(1, nil)

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after completion")
	}
}
