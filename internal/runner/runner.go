// Package runner executes independent tasks with a bounded number in flight.
//
// Tasks are grouped into fixed batches of at most limit tasks. A batch runs
// concurrently and the next batch starts only once the previous one has fully
// completed, so peak concurrency never exceeds limit.
package runner

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work producing a T.
type Task[T any] func(ctx context.Context) (T, error)

// Result holds successful task values and failure messages.
//
// Results are batch-major and keep submission order within a batch; failed tasks
// are dropped. Errors are in completion order.
type Result[T any] struct {
	Results []T
	Errors  []string
}

type outcome[T any] struct {
	value T
	ok    bool
}

// Map runs every task and never stops early on failure. A task failure, or a
// panic inside a task, is recorded and does not affect its siblings.
func Map[T any](ctx context.Context, tasks []Task[T], limit int) Result[T] {
	res := Result[T]{Results: []T{}, Errors: []string{}}
	if len(tasks) == 0 {
		return res
	}
	if limit < 1 {
		limit = 1
	}

	var mu sync.Mutex
	for start := 0; start < len(tasks); start += limit {
		end := min(start+limit, len(tasks))
		batch := tasks[start:end]
		outcomes := make([]outcome[T], len(batch))

		// Plain errgroup without a derived context: one failure must not cancel the rest.
		var g errgroup.Group
		for i, task := range batch {
			g.Go(func() error {
				value, err := runTask(ctx, task)
				if err != nil {
					mu.Lock()
					res.Errors = append(res.Errors, err.Error())
					mu.Unlock()
					return nil
				}
				outcomes[i] = outcome[T]{value: value, ok: true}
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			if o.ok {
				res.Results = append(res.Results, o.value)
			}
		}
	}

	return res
}

func runTask[T any](ctx context.Context, task Task[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}
