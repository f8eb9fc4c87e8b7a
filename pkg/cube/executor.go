package cube

import (
	"context"
	"sync"
)

// Task is a unit of transfer work. It should respect ctx cancellation.
type Task func(ctx context.Context) error

// TaskSource produces tasks one at a time. Next returns the next task, or
// ok=false when the source is exhausted. A non-nil error aborts the run.
type TaskSource interface {
	Next(ctx context.Context) (task Task, ok bool, err error)
}

// TaskSourceFunc adapts a function to the TaskSource interface.
type TaskSourceFunc func(ctx context.Context) (Task, bool, error)

// Next implements TaskSource.
func (f TaskSourceFunc) Next(ctx context.Context) (Task, bool, error) {
	return f(ctx)
}

// SliceSource yields the given tasks in order.
func SliceSource(tasks []Task) TaskSource {
	i := 0

	return TaskSourceFunc(func(_ context.Context) (Task, bool, error) {
		if i >= len(tasks) {
			return nil, false, nil
		}

		t := tasks[i]
		i++

		return t, true, nil
	})
}

// TaskResult reports the outcome of one completed task.
type TaskResult struct {
	// Index is the dispatch order of the task, starting at 0.
	Index int

	// Err is the task's error, nil on success.
	Err error
}

// Executor runs tasks from a source with bounded concurrency.
//
// Declared is the number of tasks the source promised to produce. When the
// source yields more tasks than declared the run fails with ErrOverfull
// before the surplus task is dispatched; when it exhausts early the run
// fails with ErrUnderfull. A Declared of zero disables the check.
//
// OnResult, when set, is called once per completed task from the executor's
// own goroutine. Returning a non-nil error aborts the run: no further tasks
// are dispatched, in-flight tasks run to completion, and Run returns that
// error. When OnResult is nil, any task error aborts the run the same way.
type Executor struct {
	Concurrency int
	Declared    int
	OnResult    func(TaskResult) error
}

// Run drains the source. It returns the first fatal error, or nil when
// every task completed and the declared count was honored.
func (e *Executor) Run(ctx context.Context, source TaskSource) error {
	if e.Concurrency < 1 {
		return ErrConcurrencyRequired
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, e.Concurrency)
		results = make(chan TaskResult)
	)

	// Collector owns the fatal error and the abort decision. It signals
	// the dispatch loop through the stop channel; in-flight tasks are
	// left to finish.
	stop := make(chan struct{})

	var (
		collectorDone = make(chan struct{})
		fatal         error
	)

	go func() {
		defer close(collectorDone)

		for res := range results {
			err := res.Err
			if e.OnResult != nil {
				err = e.OnResult(res)
			}

			if err != nil && fatal == nil {
				fatal = err

				close(stop)
			}
		}
	}()

	dispatched := 0

	var srcErr error

dispatch:
	for {
		select {
		case <-stop:
			break dispatch
		case <-ctx.Done():
			srcErr = ctx.Err()

			break dispatch
		default:
		}

		task, ok, err := source.Next(ctx)
		if err != nil {
			srcErr = err

			break
		}

		if !ok {
			break
		}

		if e.Declared > 0 && dispatched >= e.Declared {
			srcErr = ErrOverfull

			break
		}

		select {
		case sem <- struct{}{}:
		case <-stop:
			break dispatch
		case <-ctx.Done():
			srcErr = ctx.Err()

			break dispatch
		}

		// The abort may have raced the semaphore; recheck before
		// launching.
		select {
		case <-stop:
			<-sem

			break dispatch
		default:
		}

		wg.Add(1)

		index := dispatched
		dispatched++

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			results <- TaskResult{Index: index, Err: task(ctx)}
		}()
	}

	wg.Wait()
	close(results)
	<-collectorDone

	switch {
	case srcErr != nil:
		return srcErr
	case fatal != nil:
		return fatal
	case e.Declared > 0 && dispatched < e.Declared:
		return ErrUnderfull
	default:
		return nil
	}
}
