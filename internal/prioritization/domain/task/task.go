package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority normalizes a stored priority value. Unrecognized values
// map to medium, matching how they are scored.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(s)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Points returns the score contribution of the priority level.
func (p Priority) Points() float64 {
	switch p {
	case PriorityHigh:
		return 20.0
	case PriorityLow:
		return 5.0
	default:
		return 12.0
	}
}

// String returns the priority as a string.
func (p Priority) String() string {
	return string(p)
}

// Task is a task document as stored in the document store. The scoring
// engine only reads most fields; the score and cached hierarchy fields are
// the ones it owns and overwrites.
type Task struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ProjectID          *uuid.UUID
	AreaID             *uuid.UUID
	DueDate            *time.Time
	Priority           Priority
	ProgressPercentage float64
	CreatedAt          time.Time
	Completed          bool
	DependencyTaskIDs  []uuid.UUID

	// Owned by the scoring engine.
	CurrentScore     float64
	ScoreLastUpdated *time.Time
}

// HasDependencies reports whether the task declares any dependency tasks.
func (t *Task) HasDependencies() bool {
	return len(t.DependencyTaskIDs) > 0
}
