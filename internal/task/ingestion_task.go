package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/ingest"
)

// Common errors for IngestionTask construction.
var (
	ErrNilImporter     = errors.New("importer cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyCSVPayload = errors.New("ingestion job has no CSV data")
)

// Importer defines the ingestion pipeline operation the task invokes.
type Importer interface {
	// Run processes one ingestion job and returns its summary.
	Run(ctx context.Context, job ingest.Job) (*ingest.Summary, error)
}

// IngestionTask implements the Task interface for one CSV ingestion job.
// Submitted to the single-worker ingestion pool so runs never interleave.
type IngestionTask struct {
	id       uuid.UUID
	job      ingest.Job
	importer Importer
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewIngestionTask creates an ingestion task for the given job.
func NewIngestionTask(job ingest.Job, importer Importer, logger *slog.Logger) (*IngestionTask, error) {
	if importer == nil {
		return nil, ErrNilImporter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if len(job.Data) == 0 {
		return nil, ErrEmptyCSVPayload
	}

	return &IngestionTask{
		id:       uuid.New(),
		job:      job,
		importer: importer,
		logger:   logger.With("task_type", TaskTypeIngestion, "season_id", job.SeasonID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *IngestionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *IngestionTask) Type() string {
	return TaskTypeIngestion
}

// Status returns the current task status.
func (t *IngestionTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *IngestionTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Execute runs the ingestion pipeline for the task's job. The summary is
// logged rather than returned: the submitting request has long since been
// acknowledged.
func (t *IngestionTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	summary, err := t.importer.Run(ctx, t.job)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("ingestion failed: %w", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("ingestion completed", "summary", summary.String())
	return nil
}
