package pool

import (
	"context"
	"sync"
)

// Task is one unit of per-item stage work: one source validated, one source
// scraped, one listing scored.
type Task func(ctx context.Context) error

// Result carries the outcome of a task back to the stage driver.
type Result struct {
	Err error
}

// Pool runs tasks across a bounded set of workers. Stages keep the worker
// count small to respect third-party rate limits.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
}

// New creates a pool with the given worker count and task buffer.
func New(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// Run starts the workers and returns the result channel. The channel closes
// after Close has been called and all submitted tasks have finished. When the
// context is cancelled, queued tasks are dropped and workers stop.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-p.tasks:
					if !ok {
						return
					}
					select {
					case out <- Result{Err: task(ctx)}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}

// Submit queues a task. Blocks when the buffer is full.
func (p *Pool) Submit(task Task) {
	if task == nil {
		return
	}
	p.tasks <- task
}

// Close signals that no more tasks will be submitted.
func (p *Pool) Close() {
	close(p.tasks)
}
