package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// FanOutResult lists which tasks were handed to the job queue and which
// could not be enqueued. A failed enqueue never aborts the remaining ones.
type FanOutResult struct {
	Enqueued []uuid.UUID
	Failed   []uuid.UUID
}

// RecalculateDependentsCommand is issued when a task completes, so that
// tasks blocked on it pick up the dependency bonus.
type RecalculateDependentsCommand struct {
	CompletedTaskID uuid.UUID
}

// RecalculateDependentsHandler fans out one scoring job per dependent task.
type RecalculateDependentsHandler struct {
	tasks      task.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewRecalculateDependentsHandler creates a new handler.
func NewRecalculateDependentsHandler(tasks task.Repository, dispatcher Dispatcher, logger *slog.Logger) *RecalculateDependentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculateDependentsHandler{tasks: tasks, dispatcher: dispatcher, logger: logger}
}

// Handle looks up the incomplete dependents of the completed task and
// enqueues an independent recomputation for each.
func (h *RecalculateDependentsHandler) Handle(ctx context.Context, cmd RecalculateDependentsCommand) (*FanOutResult, error) {
	dependents, err := h.tasks.FindDependents(ctx, cmd.CompletedTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find dependents of task %s: %w", cmd.CompletedTaskID, err)
	}

	result := fanOut(ctx, h.dispatcher, h.logger, dependents)
	h.logger.InfoContext(ctx, "dependent rescoring fanned out",
		"completed_task_id", cmd.CompletedTaskID,
		"enqueued", len(result.Enqueued),
		"failed", len(result.Failed),
	)
	return result, nil
}

func fanOut(ctx context.Context, dispatcher Dispatcher, logger *slog.Logger, tasks []*task.Task) *FanOutResult {
	result := &FanOutResult{}
	for _, t := range tasks {
		if err := dispatcher.EnqueueTaskScore(ctx, t.ID); err != nil {
			logger.ErrorContext(ctx, "failed to enqueue scoring job", "task_id", t.ID, "error", err)
			result.Failed = append(result.Failed, t.ID)
			continue
		}
		result.Enqueued = append(result.Enqueued, t.ID)
	}
	return result
}
