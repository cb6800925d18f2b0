// Package jobs defines the scoring job contract: routing keys, payloads and
// the dispatcher that puts jobs on the queue.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/shared/infrastructure/jobqueue"
)

// Routing keys for scoring jobs.
const (
	KeyTaskRecalculate          = "scoring.task.recalculate"
	KeyTaskCompleted            = "scoring.task.completed"
	KeyAreaImportanceChanged    = "scoring.area.importance_changed"
	KeyProjectImportanceChanged = "scoring.project.importance_changed"
	KeyBulkInitialize           = "scoring.bulk.initialize"
)

// TaskScorePayload asks for a single task to be rescored.
type TaskScorePayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// TaskCompletedPayload announces a completed task so its dependents can be
// rescored.
type TaskCompletedPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// AreaImportancePayload announces a changed area importance.
type AreaImportancePayload struct {
	AreaID        uuid.UUID `json:"area_id"`
	NewImportance int       `json:"new_importance"`
}

// ProjectImportancePayload announces a changed project importance.
type ProjectImportancePayload struct {
	ProjectID     uuid.UUID `json:"project_id"`
	NewImportance int       `json:"new_importance"`
}

// BulkInitializePayload asks for a score backfill. A nil UserID covers all
// users; a zero BatchSize uses the handler default.
type BulkInitializePayload struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	BatchSize int        `json:"batch_size,omitempty"`
}

// Dispatcher publishes scoring jobs onto the queue.
type Dispatcher struct {
	publisher jobqueue.Publisher
	logger    *slog.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(publisher jobqueue.Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

func (d *Dispatcher) enqueue(ctx context.Context, routingKey string, payload any) error {
	job, err := jobqueue.NewJob(routingKey, payload)
	if err != nil {
		return err
	}
	body, err := job.Encode()
	if err != nil {
		return err
	}
	if err := d.publisher.Publish(ctx, routingKey, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	d.logger.Debug("job enqueued", "routing_key", routingKey, "job_id", job.JobID)
	return nil
}

// EnqueueTaskScore schedules a recomputation for one task.
func (d *Dispatcher) EnqueueTaskScore(ctx context.Context, taskID uuid.UUID) error {
	return d.enqueue(ctx, KeyTaskRecalculate, TaskScorePayload{TaskID: taskID})
}

// EnqueueTaskCompleted schedules the dependent fan-out for a completed task.
func (d *Dispatcher) EnqueueTaskCompleted(ctx context.Context, taskID uuid.UUID) error {
	return d.enqueue(ctx, KeyTaskCompleted, TaskCompletedPayload{TaskID: taskID})
}

// EnqueueAreaImportanceChanged schedules the fan-out for an area change.
func (d *Dispatcher) EnqueueAreaImportanceChanged(ctx context.Context, areaID uuid.UUID, newImportance int) error {
	return d.enqueue(ctx, KeyAreaImportanceChanged, AreaImportancePayload{AreaID: areaID, NewImportance: newImportance})
}

// EnqueueProjectImportanceChanged schedules the fan-out for a project change.
func (d *Dispatcher) EnqueueProjectImportanceChanged(ctx context.Context, projectID uuid.UUID, newImportance int) error {
	return d.enqueue(ctx, KeyProjectImportanceChanged, ProjectImportancePayload{ProjectID: projectID, NewImportance: newImportance})
}

// EnqueueBulkInitialize schedules a score backfill.
func (d *Dispatcher) EnqueueBulkInitialize(ctx context.Context, userID *uuid.UUID, batchSize int) error {
	return d.enqueue(ctx, KeyBulkInitialize, BulkInitializePayload{UserID: userID, BatchSize: batchSize})
}
