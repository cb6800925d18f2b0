package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// ScoreUpdate is the patch a successful recomputation writes back to a
// task document: the score itself plus the cached hierarchy snapshot.
type ScoreUpdate struct {
	Score              float64
	ScoreLastUpdated   time.Time
	AreaImportance     int
	ProjectImportance  int
	PillarWeight       float64
	DependenciesMet    bool
	CalculationVersion int
}

// Repository is the document-store contract for tasks.
type Repository interface {
	// FindByID returns the task with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindIncompleteByIDs returns the subset of the given tasks that are
	// not yet completed. Used for dependency gating.
	FindIncompleteByIDs(ctx context.Context, ids []uuid.UUID) ([]*Task, error)

	// FindDependents returns all incomplete tasks whose dependency list
	// contains the given task id.
	FindDependents(ctx context.Context, taskID uuid.UUID) ([]*Task, error)

	// FindIncompleteByArea returns incomplete tasks attached directly to
	// the area plus incomplete tasks of every project within the area.
	FindIncompleteByArea(ctx context.Context, areaID uuid.UUID) ([]*Task, error)

	// FindIncompleteByProject returns incomplete tasks of the project.
	FindIncompleteByProject(ctx context.Context, projectID uuid.UUID) ([]*Task, error)

	// ListIncomplete pages through incomplete tasks, optionally scoped to
	// one user. Used by bulk initialization.
	ListIncomplete(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*Task, error)

	// UpdateScore applies a score patch to the task document.
	UpdateScore(ctx context.Context, id uuid.UUID, update ScoreUpdate) error
}
