package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

func makeIncomplete(n int) []*task.Task {
	tasks := make([]*task.Task, n)
	for i := range tasks {
		tasks[i] = &task.Task{ID: uuid.New()}
	}
	return tasks
}

func TestInitializeScoresHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the backlog in batches", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.incomplete = makeIncomplete(250)
		dispatcher := newRecordingDispatcher()

		var pauses int
		handler := NewInitializeScoresHandler(repo, dispatcher, nil, 0, time.Second)
		handler.sleep = func(ctx context.Context, d time.Duration) error {
			pauses++
			assert.Equal(t, time.Second, d)
			return nil
		}

		result, err := handler.Handle(ctx, InitializeScoresCommand{})

		require.NoError(t, err)
		assert.Equal(t, 250, result.Enqueued)
		assert.Equal(t, 0, result.Errors)
		assert.Equal(t, 3, result.Batches)
		assert.Equal(t, 2, pauses)
		assert.Len(t, dispatcher.enqueued, 250)
	})

	t.Run("respects a custom batch size", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.incomplete = makeIncomplete(25)
		handler := NewInitializeScoresHandler(repo, newRecordingDispatcher(), nil, 0, 0)

		result, err := handler.Handle(ctx, InitializeScoresCommand{BatchSize: 10})

		require.NoError(t, err)
		assert.Equal(t, 25, result.Enqueued)
		assert.Equal(t, 3, result.Batches)
	})

	t.Run("uses the configured batch size when the command carries none", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.incomplete = makeIncomplete(25)
		handler := NewInitializeScoresHandler(repo, newRecordingDispatcher(), nil, 10, 0)

		result, err := handler.Handle(ctx, InitializeScoresCommand{})

		require.NoError(t, err)
		assert.Equal(t, 25, result.Enqueued)
		assert.Equal(t, 3, result.Batches)
	})

	t.Run("counts enqueue failures without aborting", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.incomplete = makeIncomplete(5)
		dispatcher := newRecordingDispatcher()
		dispatcher.failFor[repo.incomplete[2].ID] = true
		handler := NewInitializeScoresHandler(repo, dispatcher, nil, 0, 0)

		result, err := handler.Handle(ctx, InitializeScoresCommand{})

		require.NoError(t, err)
		assert.Equal(t, 4, result.Enqueued)
		assert.Equal(t, 1, result.Errors)
	})

	t.Run("empty backlog is a no-op", func(t *testing.T) {
		handler := NewInitializeScoresHandler(newFakeTaskRepo(), newRecordingDispatcher(), nil, 0, 0)

		result, err := handler.Handle(ctx, InitializeScoresCommand{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Enqueued)
		assert.Equal(t, 0, result.Batches)
	})

	t.Run("fails when the first page cannot be read", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.listErr = errors.New("connection refused")
		handler := NewInitializeScoresHandler(repo, newRecordingDispatcher(), nil, 0, 0)

		_, err := handler.Handle(ctx, InitializeScoresCommand{})

		assert.Error(t, err)
	})

	t.Run("stops when the pause is cancelled", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.incomplete = makeIncomplete(200)
		handler := NewInitializeScoresHandler(repo, newRecordingDispatcher(), nil, 0, time.Second)
		handler.sleep = func(ctx context.Context, d time.Duration) error {
			return context.Canceled
		}

		result, err := handler.Handle(ctx, InitializeScoresCommand{})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 100, result.Enqueued)
	})
}
