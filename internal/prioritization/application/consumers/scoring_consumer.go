// Package consumers wires queue jobs to the scoring command handlers.
package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aurumlife/aurum/internal/prioritization/application/commands"
	"github.com/aurumlife/aurum/internal/prioritization/jobs"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/jobqueue"
	"github.com/aurumlife/aurum/pkg/observability"
)

// ScoringJobHandler consumes all scoring routing keys and delegates to the
// command handlers. Undecodable payloads are fatal; everything else reports
// its error back to the queue for retry.
type ScoringJobHandler struct {
	recalculate *commands.RecalculateTaskScoreHandler
	dependents  *commands.RecalculateDependentsHandler
	area        *commands.RecalculateAreaTasksHandler
	project     *commands.RecalculateProjectTasksHandler
	initialize  *commands.InitializeScoresHandler
	logger      *slog.Logger
}

// NewScoringJobHandler creates a new handler.
func NewScoringJobHandler(
	recalculate *commands.RecalculateTaskScoreHandler,
	dependents *commands.RecalculateDependentsHandler,
	area *commands.RecalculateAreaTasksHandler,
	project *commands.RecalculateProjectTasksHandler,
	initialize *commands.InitializeScoresHandler,
	logger *slog.Logger,
) *ScoringJobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringJobHandler{
		recalculate: recalculate,
		dependents:  dependents,
		area:        area,
		project:     project,
		initialize:  initialize,
		logger:      logger,
	}
}

// RoutingKeys returns every scoring routing key.
func (h *ScoringJobHandler) RoutingKeys() []string {
	return []string{
		jobs.KeyTaskRecalculate,
		jobs.KeyTaskCompleted,
		jobs.KeyAreaImportanceChanged,
		jobs.KeyProjectImportanceChanged,
		jobs.KeyBulkInitialize,
	}
}

// Handle dispatches one job to the matching command handler.
func (h *ScoringJobHandler) Handle(ctx context.Context, job *jobqueue.Job) error {
	ctx = observability.WithJobID(ctx, job.JobID.String())

	switch job.RoutingKey {
	case jobs.KeyTaskRecalculate:
		return h.handleTaskRecalculate(ctx, job)
	case jobs.KeyTaskCompleted:
		return h.handleTaskCompleted(ctx, job)
	case jobs.KeyAreaImportanceChanged:
		return h.handleAreaChanged(ctx, job)
	case jobs.KeyProjectImportanceChanged:
		return h.handleProjectChanged(ctx, job)
	case jobs.KeyBulkInitialize:
		return h.handleBulkInitialize(ctx, job)
	default:
		return jobqueue.Fatal(fmt.Errorf("unknown routing key %q", job.RoutingKey))
	}
}

func (h *ScoringJobHandler) handleTaskRecalculate(ctx context.Context, job *jobqueue.Job) error {
	var payload jobs.TaskScorePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobqueue.Fatal(fmt.Errorf("bad task score payload: %w", err))
	}

	result, err := h.recalculate.Handle(ctx, commands.RecalculateTaskScoreCommand{TaskID: payload.TaskID})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "task rescored",
		"task_id", payload.TaskID,
		"status", result.Status,
		"score", result.NewScore,
	)
	return nil
}

func (h *ScoringJobHandler) handleTaskCompleted(ctx context.Context, job *jobqueue.Job) error {
	var payload jobs.TaskCompletedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobqueue.Fatal(fmt.Errorf("bad task completed payload: %w", err))
	}

	_, err := h.dependents.Handle(ctx, commands.RecalculateDependentsCommand{CompletedTaskID: payload.TaskID})
	return err
}

func (h *ScoringJobHandler) handleAreaChanged(ctx context.Context, job *jobqueue.Job) error {
	var payload jobs.AreaImportancePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobqueue.Fatal(fmt.Errorf("bad area importance payload: %w", err))
	}

	_, err := h.area.Handle(ctx, commands.RecalculateAreaTasksCommand{
		AreaID:        payload.AreaID,
		NewImportance: payload.NewImportance,
	})
	return err
}

func (h *ScoringJobHandler) handleProjectChanged(ctx context.Context, job *jobqueue.Job) error {
	var payload jobs.ProjectImportancePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobqueue.Fatal(fmt.Errorf("bad project importance payload: %w", err))
	}

	_, err := h.project.Handle(ctx, commands.RecalculateProjectTasksCommand{
		ProjectID:     payload.ProjectID,
		NewImportance: payload.NewImportance,
	})
	return err
}

func (h *ScoringJobHandler) handleBulkInitialize(ctx context.Context, job *jobqueue.Job) error {
	var payload jobs.BulkInitializePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobqueue.Fatal(fmt.Errorf("bad bulk initialize payload: %w", err))
	}

	result, err := h.initialize.Handle(ctx, commands.InitializeScoresCommand{
		UserID:    payload.UserID,
		BatchSize: payload.BatchSize,
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "score backfill finished",
		"enqueued", result.Enqueued,
		"errors", result.Errors,
		"batches", result.Batches,
	)
	return nil
}
