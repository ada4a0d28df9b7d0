// Package worker runs independent blocking calls on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsm/qualitycheck/pkg/logger"
)

const defaultPoolSize = 8

// Task is one unit of work. Tasks must be safe to run concurrently with each other.
type Task func(ctx context.Context) error

// Pool executes batches of tasks with at most size running at once.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool of size workers. Sizes below one fall back to the default.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = defaultPoolSize
	}
	p := &Pool{
		size: size,
		name: "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the maximum number of tasks run at once.
func (p *Pool) Size() int {
	return p.size
}

// Run executes every task and blocks until all started tasks have returned.
// The first task error cancels the context handed to the remaining tasks and
// is returned; tasks not yet started are skipped.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.size
	if len(tasks) < workers {
		workers = len(tasks)
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	jobs := make(chan Task)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- task:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		p.logger.Debug(ctx, "task failed", logger.Int("tasks", len(tasks)), logger.Error(firstErr))
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s canceled: %w", p.name, err)
	}
	return nil
}
