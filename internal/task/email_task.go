package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/mail"
)

// Common errors for email task construction.
var (
	ErrNilSender      = errors.New("sender cannot be nil")
	ErrEmptyRecipient = errors.New("message has no recipient")
	ErrNoRecipients   = errors.New("batch job has no recipients")
)

// SingleSender defines the one-shot transactional send operation.
type SingleSender interface {
	// SendSingle renders and delivers one message with a single attempt.
	SendSingle(ctx context.Context, msg mail.Message) error
}

// BatchSender defines the bulk batch delivery operation.
type BatchSender interface {
	// SendBatch delivers a batch job's recipients strictly in order,
	// retrying individual messages per the batch retry policy.
	SendBatch(ctx context.Context, job mail.BatchJob) mail.BatchSummary
}

// SingleEmailTask implements the Task interface for one fire-and-forget
// transactional email. Delivery is attempted once; failure is logged by the
// pool and never retried or surfaced to the submitter.
type SingleEmailTask struct {
	id     uuid.UUID
	msg    mail.Message
	sender SingleSender

	mu     sync.Mutex
	status TaskStatus
}

// NewSingleEmailTask creates a transactional email task.
func NewSingleEmailTask(msg mail.Message, sender SingleSender) (*SingleEmailTask, error) {
	if sender == nil {
		return nil, ErrNilSender
	}
	if msg.To == "" {
		return nil, ErrEmptyRecipient
	}

	return &SingleEmailTask{
		id:     uuid.New(),
		msg:    msg,
		sender: sender,
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *SingleEmailTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *SingleEmailTask) Type() string {
	return TaskTypeSingleEmail
}

// Status returns the current task status.
func (t *SingleEmailTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *SingleEmailTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Execute attempts delivery once.
func (t *SingleEmailTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := t.sender.SendSingle(ctx, t.msg); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("single send to %s failed: %w", t.msg.To, err)
	}

	t.setStatus(TaskStatusCompleted)
	return nil
}

// BatchEmailTask implements the Task interface for one bulk batch email job.
// The job is one atomic unit of work: its recipients are processed strictly
// sequentially inside a single worker slot, never in parallel.
type BatchEmailTask struct {
	id     uuid.UUID
	job    mail.BatchJob
	sender BatchSender
	logger *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewBatchEmailTask creates a bulk batch email task.
func NewBatchEmailTask(job mail.BatchJob, sender BatchSender, logger *slog.Logger) (*BatchEmailTask, error) {
	if sender == nil {
		return nil, ErrNilSender
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if len(job.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	return &BatchEmailTask{
		id:     uuid.New(),
		job:    job,
		sender: sender,
		logger: logger.With("task_type", TaskTypeBatchEmail, "subject", job.Subject),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *BatchEmailTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *BatchEmailTask) Type() string {
	return TaskTypeBatchEmail
}

// Status returns the current task status.
func (t *BatchEmailTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *BatchEmailTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Execute runs the batch job to completion. Individual recipient failures
// are absorbed by the batch engine; the task itself only fails when the
// engine could not run at all.
func (t *BatchEmailTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	summary := t.sender.SendBatch(ctx, t.job)

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("batch job finished",
		"sent", summary.Sent,
		"failed", summary.Failed,
		"total", summary.Total)
	return nil
}
