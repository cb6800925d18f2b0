package services

import (
	"context"
	"log/slog"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// DependencyChecker decides whether a task's declared dependencies are all
// completed. A query failure is treated as "dependencies met" so an
// infrastructure error never permanently blocks a task from being surfaced.
type DependencyChecker struct {
	tasks  task.Repository
	logger *slog.Logger
}

// NewDependencyChecker creates a checker over the given task store.
func NewDependencyChecker(tasks task.Repository, logger *slog.Logger) *DependencyChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DependencyChecker{
		tasks:  tasks,
		logger: logger,
	}
}

// Met reports whether every dependency of the task is completed. Tasks
// without dependencies are trivially met.
func (c *DependencyChecker) Met(ctx context.Context, t *task.Task) bool {
	if !t.HasDependencies() {
		return true
	}

	incomplete, err := c.tasks.FindIncompleteByIDs(ctx, t.DependencyTaskIDs)
	if err != nil {
		c.logger.ErrorContext(ctx, "dependency check failed, assuming met",
			"task_id", t.ID,
			"dependency_count", len(t.DependencyTaskIDs),
			"error", err,
		)
		return true
	}

	return len(incomplete) == 0
}
