package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

// DefaultBulkBatchSize bounds how many scoring jobs a backfill enqueues
// before pausing, so a large backlog does not flood the queue.
const DefaultBulkBatchSize = 100

// InitializeScoresCommand backfills scores for incomplete tasks. With a nil
// UserID it covers every user.
type InitializeScoresCommand struct {
	UserID    *uuid.UUID
	BatchSize int
}

// InitializeScoresResult summarizes a backfill run.
type InitializeScoresResult struct {
	Enqueued int
	Errors   int
	Batches  int
}

// InitializeScoresHandler pages through incomplete tasks and enqueues a
// scoring job for each, pausing between batches.
type InitializeScoresHandler struct {
	tasks      task.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
	batchSize  int
	batchPause time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewInitializeScoresHandler creates a new handler. batchSize is the default
// page size when the command does not carry one; batchPause is the delay
// inserted between full batches.
func NewInitializeScoresHandler(tasks task.Repository, dispatcher Dispatcher, logger *slog.Logger, batchSize int, batchPause time.Duration) *InitializeScoresHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}
	return &InitializeScoresHandler{
		tasks:      tasks,
		dispatcher: dispatcher,
		logger:     logger,
		batchSize:  batchSize,
		batchPause: batchPause,
		sleep:      sleepContext,
	}
}

// Handle runs the backfill. It stops early only when the context is
// cancelled or the very first page cannot be read; enqueue failures are
// counted and skipped.
func (h *InitializeScoresHandler) Handle(ctx context.Context, cmd InitializeScoresCommand) (*InitializeScoresResult, error) {
	batchSize := cmd.BatchSize
	if batchSize <= 0 {
		batchSize = h.batchSize
	}

	result := &InitializeScoresResult{}
	offset := 0
	for {
		page, err := h.tasks.ListIncomplete(ctx, cmd.UserID, batchSize, offset)
		if err != nil {
			if result.Batches == 0 {
				return nil, fmt.Errorf("failed to list incomplete tasks: %w", err)
			}
			h.logger.ErrorContext(ctx, "backfill stopped early", "offset", offset, "error", err)
			return result, nil
		}
		if len(page) == 0 {
			break
		}
		result.Batches++

		for _, t := range page {
			if err := h.dispatcher.EnqueueTaskScore(ctx, t.ID); err != nil {
				h.logger.ErrorContext(ctx, "failed to enqueue scoring job", "task_id", t.ID, "error", err)
				result.Errors++
				continue
			}
			result.Enqueued++
		}

		h.logger.InfoContext(ctx, "backfill batch enqueued",
			"batch", result.Batches,
			"size", len(page),
			"enqueued", result.Enqueued,
			"errors", result.Errors,
		)

		if len(page) < batchSize {
			break
		}
		offset += batchSize

		if h.batchPause > 0 {
			if err := h.sleep(ctx, h.batchPause); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
