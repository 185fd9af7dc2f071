package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool manages a fixed set of worker goroutines that process tasks
// from a task queue. The pool imposes no ordering across workers, but a pool
// with a single worker executes its queue strictly in submission order,
// which is how the CSV ingestion pipeline is serialized.
type WorkerPool struct {
	// name identifies the pool in logs (e.g. "ingestion", "bulk_mail").
	name string

	// taskQueue provides read access to the tasks to be processed.
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start.
	workerCount int

	// wg tracks active worker goroutines for clean shutdown.
	wg sync.WaitGroup

	// ctx cancellation aborts in-flight task execution.
	ctx    context.Context
	cancel context.CancelFunc

	// quit tells workers to stop pulling new tasks without cancelling
	// whatever they are currently executing.
	quit chan struct{}

	stopOnce sync.Once

	logger *slog.Logger

	// errorHandler is called when a task execution fails.
	// If nil, failures are only logged.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// Name identifies the pool in log output.
	Name string

	// WorkerCount determines how many concurrent worker goroutines to
	// start. If zero or negative, defaults to 1.
	WorkerCount int
}

// NewWorkerPool creates a worker pool reading from the given queue.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"pool", config.Name,
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		name:        config.Name,
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		quit:        make(chan struct{}),
		logger:      logger.With("pool", config.Name),
	}
}

// SetErrorHandler sets a custom handler for task execution failures.
// Must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Shutdown stops the pool. With wait=true, workers finish their current task
// before exiting and Shutdown blocks until they have; with wait=false the
// pool context is cancelled immediately, aborting context-aware work, and
// Shutdown returns without blocking.
func (p *WorkerPool) Shutdown(wait bool) {
	p.stopOnce.Do(func() {
		close(p.quit)
	})

	if wait {
		p.wg.Wait()
		p.cancel()
		p.logger.Info("worker pool drained and stopped")
		return
	}

	p.cancel()
	p.logger.Info("worker pool shutdown signalled")
}

// worker pulls tasks until the pool is told to stop or the queue is closed
// and drained.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.quit:
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			p.processTask(task, id)
		}
	}
}

// processTask executes a single task, logging the outcome and invoking the
// error handler on failure. No execution result reaches the submitter; logs
// are the only audit trail.
func (p *WorkerPool) processTask(task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := task.Execute(p.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	logger.Info("task completed successfully")
}
