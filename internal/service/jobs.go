package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsplhq/registration-api/internal/config"
	"github.com/tsplhq/registration-api/internal/ingest"
	"github.com/tsplhq/registration-api/internal/mail"
	"github.com/tsplhq/registration-api/internal/task"
)

// Pool defaults. The ingestion pool is fixed at one worker so ingestion runs
// never interleave; mail pools default to the documented capacities.
const (
	defaultIngestionQueueSize = 16
	defaultMailWorkers        = 10
	defaultMailQueueSize      = 100
	defaultBulkMailWorkers    = 3
	defaultBulkMailQueueSize  = 20
)

// JobService owns the three background worker pools and is the sole
// submission point for asynchronous work. Submission never blocks: a full
// queue surfaces as ErrJobQueueFull and the caller's request fails fast.
type JobService struct {
	importer task.Importer
	sender   *mail.Sender
	logger   *slog.Logger

	ingestQueue *task.TaskQueue
	ingestPool  *task.WorkerPool

	mailQueue *task.TaskQueue
	mailPool  *task.WorkerPool

	bulkQueue *task.TaskQueue
	bulkPool  *task.WorkerPool
}

// NewJobService builds the pools from config, applying defaults for zero
// values. Start must be called before submitting work.
func NewJobService(cfg config.JobsConfig, importer task.Importer, sender *mail.Sender, logger *slog.Logger) (*JobService, error) {
	if importer == nil {
		return nil, errors.New("importer cannot be nil")
	}
	if sender == nil {
		return nil, errors.New("sender cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	ingestQueueSize := cfg.IngestionQueueSize
	if ingestQueueSize <= 0 {
		ingestQueueSize = defaultIngestionQueueSize
	}
	mailWorkers := cfg.MailWorkers
	if mailWorkers <= 0 {
		mailWorkers = defaultMailWorkers
	}
	mailQueueSize := cfg.MailQueueSize
	if mailQueueSize <= 0 {
		mailQueueSize = defaultMailQueueSize
	}
	bulkWorkers := cfg.BulkMailWorkers
	if bulkWorkers <= 0 {
		bulkWorkers = defaultBulkMailWorkers
	}
	bulkQueueSize := cfg.BulkMailQueueSize
	if bulkQueueSize <= 0 {
		bulkQueueSize = defaultBulkMailQueueSize
	}

	s := &JobService{
		importer: importer,
		sender:   sender,
		logger:   logger.With("component", "job_service"),
	}

	s.ingestQueue = task.NewTaskQueue(ingestQueueSize, logger)
	s.ingestPool = task.NewWorkerPool(s.ingestQueue,
		task.WorkerPoolConfig{Name: "ingestion", WorkerCount: 1}, logger)

	s.mailQueue = task.NewTaskQueue(mailQueueSize, logger)
	s.mailPool = task.NewWorkerPool(s.mailQueue,
		task.WorkerPoolConfig{Name: "mail", WorkerCount: mailWorkers}, logger)

	s.bulkQueue = task.NewTaskQueue(bulkQueueSize, logger)
	s.bulkPool = task.NewWorkerPool(s.bulkQueue,
		task.WorkerPoolConfig{Name: "bulk_mail", WorkerCount: bulkWorkers}, logger)

	return s, nil
}

// Start launches all three worker pools.
func (s *JobService) Start() {
	s.ingestPool.Start()
	s.mailPool.Start()
	s.bulkPool.Start()
	s.logger.Info("background job pools started")
}

// Shutdown stops the pools. With wait=true, in-flight jobs finish first;
// pending queued jobs are dropped either way, since jobs are memory-only.
func (s *JobService) Shutdown(wait bool) {
	s.ingestQueue.Close()
	s.mailQueue.Close()
	s.bulkQueue.Close()

	s.ingestPool.Shutdown(wait)
	s.mailPool.Shutdown(wait)
	s.bulkPool.Shutdown(wait)
	s.logger.Info("background job pools stopped", "waited", wait)
}

// SubmitIngestion enqueues a CSV ingestion job onto the single-slot
// pipeline. A job submitted while another runs queues behind it.
func (s *JobService) SubmitIngestion(job ingest.Job) error {
	t, err := task.NewIngestionTask(job, s.importer, s.logger)
	if err != nil {
		return fmt.Errorf("build ingestion task: %w", err)
	}
	return s.enqueue(s.ingestQueue, t)
}

// SubmitSingleEmail enqueues one fire-and-forget transactional email.
func (s *JobService) SubmitSingleEmail(msg mail.Message) error {
	t, err := task.NewSingleEmailTask(msg, s.sender)
	if err != nil {
		return fmt.Errorf("build email task: %w", err)
	}
	return s.enqueue(s.mailQueue, t)
}

// SubmitBatchEmail enqueues one bulk batch email job.
func (s *JobService) SubmitBatchEmail(job mail.BatchJob) error {
	t, err := task.NewBatchEmailTask(job, s.sender, s.logger)
	if err != nil {
		return fmt.Errorf("build batch email task: %w", err)
	}
	return s.enqueue(s.bulkQueue, t)
}

func (s *JobService) enqueue(queue *task.TaskQueue, t task.Task) error {
	if err := queue.Enqueue(t); err != nil {
		if errors.Is(err, task.ErrQueueFull) {
			return fmt.Errorf("%w: %v", ErrJobQueueFull, err)
		}
		return err
	}
	return nil
}
