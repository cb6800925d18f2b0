package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// RecalculateAreaTasksCommand is issued when an area's importance changes.
// NewImportance is informational; each scoring job re-reads the hierarchy.
type RecalculateAreaTasksCommand struct {
	AreaID        uuid.UUID
	NewImportance int
}

// RecalculateAreaTasksHandler rescans an area after its importance changed
// and enqueues a scoring job for every incomplete task under it, both tasks
// attached to the area directly and tasks in its projects.
type RecalculateAreaTasksHandler struct {
	tasks      task.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewRecalculateAreaTasksHandler creates a new handler.
func NewRecalculateAreaTasksHandler(tasks task.Repository, dispatcher Dispatcher, logger *slog.Logger) *RecalculateAreaTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculateAreaTasksHandler{tasks: tasks, dispatcher: dispatcher, logger: logger}
}

// Handle executes the fan-out.
func (h *RecalculateAreaTasksHandler) Handle(ctx context.Context, cmd RecalculateAreaTasksCommand) (*FanOutResult, error) {
	affected, err := h.tasks.FindIncompleteByArea(ctx, cmd.AreaID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks for area %s: %w", cmd.AreaID, err)
	}

	result := fanOut(ctx, h.dispatcher, h.logger, affected)
	h.logger.InfoContext(ctx, "area rescoring fanned out",
		"area_id", cmd.AreaID,
		"new_importance", cmd.NewImportance,
		"enqueued", len(result.Enqueued),
		"failed", len(result.Failed),
	)
	return result, nil
}
