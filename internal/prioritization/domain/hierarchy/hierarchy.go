// Package hierarchy holds the pillar → area → project chain a task hangs
// from. The scoring engine only reads importance and weight values from it.
package hierarchy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a hierarchy document does not exist.
var ErrNotFound = errors.New("hierarchy document not found")

// Project is a body of work within an area.
type Project struct {
	ID         uuid.UUID
	AreaID     *uuid.UUID
	Importance int // 1-5
}

// Area is a sub-grouping within a pillar.
type Area struct {
	ID         uuid.UUID
	PillarID   *uuid.UUID
	Importance int // 1-5
}

// Pillar is a top-level life domain.
type Pillar struct {
	ID     uuid.UUID
	Weight float64 // 0.1-2.0
}

// Repository is the document-store contract for hierarchy lookups.
type Repository interface {
	FindProject(ctx context.Context, id uuid.UUID) (*Project, error)
	FindArea(ctx context.Context, id uuid.UUID) (*Area, error)
	FindPillar(ctx context.Context, id uuid.UUID) (*Pillar, error)
}
