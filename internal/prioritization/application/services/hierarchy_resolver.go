package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// ResolverConfig configures the hierarchy resolver's circuit breaker.
type ResolverConfig struct {
	// CircuitBreakerEnabled enables the breaker around store lookups.
	CircuitBreakerEnabled bool

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold uint32
}

// DefaultResolverConfig returns a sensible default configuration.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		CircuitBreakerEnabled: true,
		MaxRequests:           3,
		Interval:              10 * time.Second,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
	}
}

// HierarchyResolver walks a task's project → area → pillar chain and
// returns the importance/weight snapshot used for scoring. Resolution never
// fails: missing links and store errors degrade to defaults so a single bad
// lookup can never block scoring.
type HierarchyResolver struct {
	hierarchy hierarchy.Repository
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *slog.Logger
}

// NewHierarchyResolver creates a resolver over the given hierarchy store.
func NewHierarchyResolver(repo hierarchy.Repository, logger *slog.Logger, cfg ResolverConfig) *HierarchyResolver {
	if logger == nil {
		logger = slog.Default()
	}

	r := &HierarchyResolver{
		hierarchy: repo,
		logger:    logger,
	}

	if cfg.CircuitBreakerEnabled {
		settings := gobreaker.Settings{
			Name:        "hierarchy-store",
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}
		r.breaker = gobreaker.NewCircuitBreaker[any](settings)
	}

	return r
}

// Resolve returns the hierarchy snapshot for a task. Tasks under a project
// inherit the project's area; tasks without a project may hang directly off
// an area. Tasks with neither get the default snapshot.
func (r *HierarchyResolver) Resolve(ctx context.Context, t *task.Task) Snapshot {
	snapshot := DefaultSnapshot()

	switch {
	case t.ProjectID != nil:
		project := r.findProject(ctx, t.ID, *t.ProjectID)
		if project == nil {
			return snapshot
		}
		if project.Importance >= 1 {
			snapshot.ProjectImportance = project.Importance
		}
		if project.AreaID != nil {
			r.resolveAreaChain(ctx, t.ID, *project.AreaID, &snapshot)
		}

	case t.AreaID != nil:
		r.resolveAreaChain(ctx, t.ID, *t.AreaID, &snapshot)
	}

	return snapshot
}

func (r *HierarchyResolver) resolveAreaChain(ctx context.Context, taskID, areaID uuid.UUID, snapshot *Snapshot) {
	area := r.findArea(ctx, taskID, areaID)
	if area == nil {
		return
	}
	if area.Importance >= 1 {
		snapshot.AreaImportance = area.Importance
	}
	if area.PillarID == nil {
		return
	}
	pillar := r.findPillar(ctx, taskID, *area.PillarID)
	if pillar != nil && pillar.Weight > 0 {
		snapshot.PillarWeight = pillar.Weight
	}
}

func (r *HierarchyResolver) findProject(ctx context.Context, taskID, id uuid.UUID) *hierarchy.Project {
	result := r.lookup(ctx, taskID, "projects", func() (any, error) {
		return r.hierarchy.FindProject(ctx, id)
	})
	if result == nil {
		return nil
	}
	return result.(*hierarchy.Project)
}

func (r *HierarchyResolver) findArea(ctx context.Context, taskID, id uuid.UUID) *hierarchy.Area {
	result := r.lookup(ctx, taskID, "areas", func() (any, error) {
		return r.hierarchy.FindArea(ctx, id)
	})
	if result == nil {
		return nil
	}
	return result.(*hierarchy.Area)
}

func (r *HierarchyResolver) findPillar(ctx context.Context, taskID, id uuid.UUID) *hierarchy.Pillar {
	result := r.lookup(ctx, taskID, "pillars", func() (any, error) {
		return r.hierarchy.FindPillar(ctx, id)
	})
	if result == nil {
		return nil
	}
	return result.(*hierarchy.Pillar)
}

// lookup runs a store read behind the breaker. Missing documents are a
// normal outcome and never count as breaker failures; infrastructure errors
// are logged and swallowed (fail-open).
func (r *HierarchyResolver) lookup(ctx context.Context, taskID uuid.UUID, collection string, fn func() (any, error)) any {
	wrapped := func() (any, error) {
		result, err := fn()
		if errors.Is(err, hierarchy.ErrNotFound) {
			return nil, nil
		}
		return result, err
	}

	var result any
	var err error
	if r.breaker != nil {
		result, err = r.breaker.Execute(wrapped)
	} else {
		result, err = wrapped()
	}

	if err != nil {
		r.logger.ErrorContext(ctx, "hierarchy lookup failed, using defaults",
			"task_id", taskID,
			"collection", collection,
			"error", err,
		)
		return nil
	}

	return result
}
