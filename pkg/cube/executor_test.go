package cube_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnndsc/cube-client/pkg/cube"
)

var errTaskFailed = errors.New("task failed")

func makeTasks(n int, fn func(i int) error) []cube.Task {
	tasks := make([]cube.Task, n)
	for i := range tasks {
		i := i
		tasks[i] = func(_ context.Context) error {
			return fn(i)
		}
	}

	return tasks
}

func TestExecutor_RunsAllTasks(t *testing.T) {
	t.Parallel()

	var completed atomic.Int32

	executor := &cube.Executor{Concurrency: 3, Declared: 10}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		completed.Add(1)

		return nil
	})))
	require.NoError(t, err)
	assert.Equal(t, int32(10), completed.Load())
}

func TestExecutor_ConcurrencyBound(t *testing.T) {
	t.Parallel()

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)

	executor := &cube.Executor{Concurrency: 3, Declared: 10}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		// Record the high-water mark of concurrent tasks.
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)

		return nil
	})))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestExecutor_Overfull(t *testing.T) {
	t.Parallel()

	executor := &cube.Executor{Concurrency: 2, Declared: 9}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		return nil
	})))
	require.ErrorIs(t, err, cube.ErrOverfull)
}

func TestExecutor_Underfull(t *testing.T) {
	t.Parallel()

	executor := &cube.Executor{Concurrency: 2, Declared: 11}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		return nil
	})))
	require.ErrorIs(t, err, cube.ErrUnderfull)
}

func TestExecutor_ExactDeclared(t *testing.T) {
	t.Parallel()

	executor := &cube.Executor{Concurrency: 2, Declared: 10}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		return nil
	})))
	require.NoError(t, err)
}

func TestExecutor_FailFast(t *testing.T) {
	t.Parallel()

	var dispatched atomic.Int32

	// Concurrency 1 makes dispatch deterministic: after the first task
	// fails, no further task may start.
	executor := &cube.Executor{Concurrency: 1, Declared: 10}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(i int) error {
		dispatched.Add(1)

		if i == 0 {
			return errTaskFailed
		}

		return nil
	})))
	require.ErrorIs(t, err, errTaskFailed)
	assert.LessOrEqual(t, dispatched.Load(), int32(2), "dispatch must stop once the failure is seen")
}

func TestExecutor_InFlightComplete(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		finished []int
		started  sync.WaitGroup
	)

	started.Add(2)

	release := make(chan struct{})

	// Release the blocked siblings only once both are in flight, while
	// Run is still draining them.
	go func() {
		started.Wait()
		close(release)
	}()

	executor := &cube.Executor{Concurrency: 3, Declared: 3}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(3, func(i int) error {
		if i == 0 {
			// Fail only after both siblings are dispatched, so the
			// error is observed with work in flight.
			started.Wait()

			return errTaskFailed
		}

		started.Done()

		// The siblings block until released; a run that abandoned
		// in-flight tasks would return without their results.
		<-release

		mu.Lock()
		finished = append(finished, i)
		mu.Unlock()

		return nil
	})))

	require.ErrorIs(t, err, errTaskFailed)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, finished, 2, "in-flight tasks run to completion")
}

func TestExecutor_OnResultContinues(t *testing.T) {
	t.Parallel()

	var (
		completed atomic.Int32
		failures  atomic.Int32
	)

	executor := &cube.Executor{
		Concurrency: 2,
		Declared:    5,
		OnResult: func(res cube.TaskResult) error {
			if res.Err != nil {
				failures.Add(1)
			}

			return nil
		},
	}

	// One task fails with an I/O-style error; the handler records it and
	// lets the rest finish, so the run ends without Underfull.
	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(5, func(i int) error {
		completed.Add(1)

		if i == 2 {
			return errTaskFailed
		}

		return nil
	})))
	require.NoError(t, err)
	assert.Equal(t, int32(5), completed.Load())
	assert.Equal(t, int32(1), failures.Load())
}

func TestExecutor_OnResultAborts(t *testing.T) {
	t.Parallel()

	errAbort := errors.New("abort")

	executor := &cube.Executor{
		Concurrency: 1,
		OnResult: func(res cube.TaskResult) error {
			if res.Index == 1 {
				return errAbort
			}

			return nil
		},
	}

	err := executor.Run(context.Background(), cube.SliceSource(makeTasks(10, func(int) error {
		return nil
	})))
	require.ErrorIs(t, err, errAbort)
}

func TestExecutor_ConcurrencyRequired(t *testing.T) {
	t.Parallel()

	executor := &cube.Executor{}

	err := executor.Run(context.Background(), cube.SliceSource(nil))
	require.ErrorIs(t, err, cube.ErrConcurrencyRequired)
}

func TestExecutor_SourceError(t *testing.T) {
	t.Parallel()

	errSource := errors.New("source broke")

	executor := &cube.Executor{Concurrency: 2}

	err := executor.Run(context.Background(), cube.TaskSourceFunc(func(_ context.Context) (cube.Task, bool, error) {
		return nil, false, errSource
	}))
	require.ErrorIs(t, err, errSource)
}

func TestExecutor_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := &cube.Executor{Concurrency: 2}

	err := executor.Run(ctx, cube.SliceSource(makeTasks(10, func(int) error {
		return nil
	})))
	require.ErrorIs(t, err, context.Canceled)
}
