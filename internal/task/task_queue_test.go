package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a minimal Task for queue and pool tests.
type stubTask struct {
	id      uuid.UUID
	typ     string
	execute func(ctx context.Context) error

	mu     sync.Mutex
	status TaskStatus
}

func newStubTask(execute func(ctx context.Context) error) *stubTask {
	if execute == nil {
		execute = func(context.Context) error { return nil }
	}
	return &stubTask{
		id:      uuid.New(),
		typ:     "stub",
		execute: execute,
		status:  TaskStatusPending,
	}
}

func (t *stubTask) ID() uuid.UUID { return t.id }
func (t *stubTask) Type() string  { return t.typ }

func (t *stubTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *stubTask) Execute(ctx context.Context) error {
	return t.execute(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("accepts tasks up to capacity", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(2, discardLogger())
		require.NoError(t, q.Enqueue(newStubTask(nil)))
		require.NoError(t, q.Enqueue(newStubTask(nil)))

		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("rejects after close", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(2, discardLogger())
		q.Close()

		err := q.Enqueue(newStubTask(nil))
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, discardLogger())
		q.Close()
		q.Close()
	})

	t.Run("queued tasks drain after close", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(2, discardLogger())
		first := newStubTask(nil)
		second := newStubTask(nil)
		require.NoError(t, q.Enqueue(first))
		require.NoError(t, q.Enqueue(second))
		q.Close()

		got := <-q.GetChannel()
		assert.Equal(t, first.ID(), got.ID())
		got = <-q.GetChannel()
		assert.Equal(t, second.ID(), got.ID())

		_, open := <-q.GetChannel()
		assert.False(t, open)
	})
}

func TestWorkerPool(t *testing.T) {
	t.Parallel()

	t.Run("processes queued tasks", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(10, discardLogger())
		done := make(chan uuid.UUID, 10)

		for i := 0; i < 5; i++ {
			task := newStubTask(nil)
			id := task.id
			task.execute = func(context.Context) error {
				done <- id
				return nil
			}
			require.NoError(t, q.Enqueue(task))
		}

		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "test", WorkerCount: 3}, discardLogger())
		pool.Start()
		defer pool.Shutdown(true)

		seen := make(map[uuid.UUID]bool)
		for i := 0; i < 5; i++ {
			seen[<-done] = true
		}
		assert.Len(t, seen, 5)
	})

	t.Run("single worker preserves submission order", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(10, discardLogger())
		var mu sync.Mutex
		var order []int
		done := make(chan struct{})

		for i := 0; i < 5; i++ {
			n := i
			task := newStubTask(func(context.Context) error {
				mu.Lock()
				order = append(order, n)
				finished := len(order) == 5
				mu.Unlock()
				if finished {
					close(done)
				}
				return nil
			})
			require.NoError(t, q.Enqueue(task))
		}

		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "serial", WorkerCount: 1}, discardLogger())
		pool.Start()
		defer pool.Shutdown(true)

		<-done
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("error handler sees failures", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(5, discardLogger())
		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "failing", WorkerCount: 1}, discardLogger())

		failures := make(chan error, 1)
		pool.SetErrorHandler(func(_ Task, err error) {
			failures <- err
		})

		boom := errors.New("boom")
		require.NoError(t, q.Enqueue(newStubTask(func(context.Context) error { return boom })))

		pool.Start()
		defer pool.Shutdown(true)

		assert.ErrorIs(t, <-failures, boom)
	})

	t.Run("zero worker count defaults to one", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, discardLogger())
		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "default"}, discardLogger())
		assert.Equal(t, 1, pool.workerCount)
	})

	t.Run("graceful shutdown finishes in-flight task", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, discardLogger())
		started := make(chan struct{})
		finished := make(chan struct{})

		require.NoError(t, q.Enqueue(newStubTask(func(context.Context) error {
			close(started)
			<-finished
			return nil
		})))

		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "drain", WorkerCount: 1}, discardLogger())
		pool.Start()

		<-started
		go close(finished)
		pool.Shutdown(true)
	})

	t.Run("immediate shutdown cancels pool context", func(t *testing.T) {
		t.Parallel()

		q := NewTaskQueue(1, discardLogger())
		started := make(chan struct{})
		cancelled := make(chan struct{})

		require.NoError(t, q.Enqueue(newStubTask(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		})))

		pool := NewWorkerPool(q, WorkerPoolConfig{Name: "abort", WorkerCount: 1}, discardLogger())
		pool.Start()

		<-started
		pool.Shutdown(false)
		<-cancelled
	})
}
