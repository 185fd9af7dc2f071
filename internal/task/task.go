package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants.
const (
	// TaskTypeIngestion identifies CSV ingestion jobs.
	TaskTypeIngestion = "csv_ingestion"

	// TaskTypeSingleEmail identifies fire-and-forget transactional emails.
	TaskTypeSingleEmail = "single_email"

	// TaskTypeBatchEmail identifies bulk batch email jobs.
	TaskTypeBatchEmail = "batch_email"
)

// Task represents a unit of background work to be processed. Tasks are held
// only in memory: a process crash loses pending and in-flight tasks, and
// their outcome is observable through logs alone.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue, allowing services
// to enqueue tasks for processing.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission.
	Close()
}
