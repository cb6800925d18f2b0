package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// RecalculateProjectTasksCommand is issued when a project's importance
// changes.
type RecalculateProjectTasksCommand struct {
	ProjectID     uuid.UUID
	NewImportance int
}

// RecalculateProjectTasksHandler enqueues a scoring job for every incomplete
// task in the project.
type RecalculateProjectTasksHandler struct {
	tasks      task.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewRecalculateProjectTasksHandler creates a new handler.
func NewRecalculateProjectTasksHandler(tasks task.Repository, dispatcher Dispatcher, logger *slog.Logger) *RecalculateProjectTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculateProjectTasksHandler{tasks: tasks, dispatcher: dispatcher, logger: logger}
}

// Handle executes the fan-out.
func (h *RecalculateProjectTasksHandler) Handle(ctx context.Context, cmd RecalculateProjectTasksCommand) (*FanOutResult, error) {
	affected, err := h.tasks.FindIncompleteByProject(ctx, cmd.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks for project %s: %w", cmd.ProjectID, err)
	}

	result := fanOut(ctx, h.dispatcher, h.logger, affected)
	h.logger.InfoContext(ctx, "project rescoring fanned out",
		"project_id", cmd.ProjectID,
		"new_importance", cmd.NewImportance,
		"enqueued", len(result.Enqueued),
		"failed", len(result.Failed),
	)
	return result, nil
}
