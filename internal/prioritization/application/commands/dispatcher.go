package commands

import (
	"context"

	"github.com/google/uuid"
)

// Dispatcher enqueues scoring work onto the background job queue. Fan-out
// handlers use it to trigger one independent recomputation job per task.
type Dispatcher interface {
	EnqueueTaskScore(ctx context.Context, taskID uuid.UUID) error
}
