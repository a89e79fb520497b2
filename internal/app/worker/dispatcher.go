package worker

import (
	"context"
	"log"
	"sync"
)

// Dispatcher is a bounded worker pool running scheduled pipeline tasks.
// Tasks are independent units of work with no ordering guarantee relative to
// one another; a slow clone on one worker never blocks jobs on the others.
type Dispatcher struct {
	tasks   chan func(ctx context.Context)
	workers int
	wg      sync.WaitGroup
}

func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		tasks:   make(chan func(ctx context.Context), queueSize),
		workers: workers,
	}
}

// Schedule hands a task to the pool. It blocks only when the queue is full.
func (d *Dispatcher) Schedule(task func(ctx context.Context)) {
	d.tasks <- task
}

// Start launches the workers. Each drains the task channel until ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Printf("INFO: dispatcher starting %d workers", d.workers)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i)
	}
}

// Wait blocks until every worker has exited after cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Printf("INFO: worker %d stopping", id)
			return
		case task := <-d.tasks:
			d.runTask(ctx, id, task)
		}
	}
}

// runTask contains a panicking task so one bad job cannot take a worker down.
func (d *Dispatcher) runTask(ctx context.Context, id int, task func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: worker %d: task panicked: %v", id, r)
		}
	}()
	task(ctx)
}
