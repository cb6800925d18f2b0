package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/application/services"
	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// scoreCalculationVersion is written with every score so a future algorithm
// change can identify stale scores.
const scoreCalculationVersion = 1

// RecalculateTaskScoreStatus describes the outcome of a recomputation.
type RecalculateTaskScoreStatus string

const (
	// StatusUpdated means a new score was computed and persisted.
	StatusUpdated RecalculateTaskScoreStatus = "updated"
	// StatusSkipped means the task is completed and no longer scored.
	StatusSkipped RecalculateTaskScoreStatus = "skipped"
	// StatusNotFound means the referenced task does not exist.
	StatusNotFound RecalculateTaskScoreStatus = "not_found"
)

// RecalculateTaskScoreCommand identifies the task to rescore.
type RecalculateTaskScoreCommand struct {
	TaskID uuid.UUID
}

// RecalculateTaskScoreResult reports what a recomputation did.
type RecalculateTaskScoreResult struct {
	TaskID          uuid.UUID
	Status          RecalculateTaskScoreStatus
	NewScore        float64
	Snapshot        services.Snapshot
	DependenciesMet bool
	UpdatedAt       time.Time
}

// RecalculateTaskScoreHandler recomputes and persists one task's priority
// score. Store errors on the task itself are returned so the job queue's
// retry mechanism engages; hierarchy and dependency lookups degrade to
// defaults inside their services instead.
type RecalculateTaskScoreHandler struct {
	tasks        task.Repository
	resolver     *services.HierarchyResolver
	dependencies *services.DependencyChecker
	calculator   *services.ScoreCalculator
	logger       *slog.Logger
	now          func() time.Time
}

// NewRecalculateTaskScoreHandler creates a new handler.
func NewRecalculateTaskScoreHandler(
	tasks task.Repository,
	resolver *services.HierarchyResolver,
	dependencies *services.DependencyChecker,
	calculator *services.ScoreCalculator,
	logger *slog.Logger,
) *RecalculateTaskScoreHandler {
	if calculator == nil {
		calculator = services.NewScoreCalculator(services.DefaultCalculatorConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculateTaskScoreHandler{
		tasks:        tasks,
		resolver:     resolver,
		dependencies: dependencies,
		calculator:   calculator,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the recomputation.
func (h *RecalculateTaskScoreHandler) Handle(ctx context.Context, cmd RecalculateTaskScoreCommand) (*RecalculateTaskScoreResult, error) {
	t, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if errors.Is(err, task.ErrNotFound) {
		h.logger.WarnContext(ctx, "task not found for rescoring", "task_id", cmd.TaskID)
		return &RecalculateTaskScoreResult{TaskID: cmd.TaskID, Status: StatusNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", cmd.TaskID, err)
	}

	// Completed tasks keep their last score forever.
	if t.Completed {
		return &RecalculateTaskScoreResult{TaskID: cmd.TaskID, Status: StatusSkipped}, nil
	}

	snapshot := h.resolver.Resolve(ctx, t)
	dependenciesMet := h.dependencies.Met(ctx, t)

	now := h.now().UTC()
	score, explanation := h.calculator.Score(t, snapshot, dependenciesMet, now)

	h.logger.DebugContext(ctx, "score calculated",
		"task_id", t.ID,
		"score", score,
		"breakdown", explanation,
	)

	update := task.ScoreUpdate{
		Score:              score,
		ScoreLastUpdated:   now,
		AreaImportance:     snapshot.AreaImportance,
		ProjectImportance:  snapshot.ProjectImportance,
		PillarWeight:       snapshot.PillarWeight,
		DependenciesMet:    dependenciesMet,
		CalculationVersion: scoreCalculationVersion,
	}
	if err := h.tasks.UpdateScore(ctx, t.ID, update); err != nil {
		return nil, fmt.Errorf("failed to persist score for task %s: %w", t.ID, err)
	}

	return &RecalculateTaskScoreResult{
		TaskID:          t.ID,
		Status:          StatusUpdated,
		NewScore:        score,
		Snapshot:        snapshot,
		DependenciesMet: dependenciesMet,
		UpdatedAt:       now,
	}, nil
}
