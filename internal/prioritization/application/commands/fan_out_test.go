package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumlife/aurum/internal/prioritization/domain/task"
)

func TestRecalculateDependentsHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues one job per dependent", func(t *testing.T) {
		repo := newFakeTaskRepo()
		completed := uuid.New()
		depA := &task.Task{ID: uuid.New()}
		depB := &task.Task{ID: uuid.New()}
		repo.dependents[completed] = []*task.Task{depA, depB}

		dispatcher := newRecordingDispatcher()
		handler := NewRecalculateDependentsHandler(repo, dispatcher, nil)

		result, err := handler.Handle(ctx, RecalculateDependentsCommand{CompletedTaskID: completed})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{depA.ID, depB.ID}, result.Enqueued)
		assert.Empty(t, result.Failed)
		assert.ElementsMatch(t, []uuid.UUID{depA.ID, depB.ID}, dispatcher.enqueued)
	})

	t.Run("no dependents means nothing to do", func(t *testing.T) {
		handler := NewRecalculateDependentsHandler(newFakeTaskRepo(), newRecordingDispatcher(), nil)

		result, err := handler.Handle(ctx, RecalculateDependentsCommand{CompletedTaskID: uuid.New()})

		require.NoError(t, err)
		assert.Empty(t, result.Enqueued)
		assert.Empty(t, result.Failed)
	})

	t.Run("a failed enqueue does not stop the rest", func(t *testing.T) {
		repo := newFakeTaskRepo()
		completed := uuid.New()
		depA := &task.Task{ID: uuid.New()}
		depB := &task.Task{ID: uuid.New()}
		depC := &task.Task{ID: uuid.New()}
		repo.dependents[completed] = []*task.Task{depA, depB, depC}

		dispatcher := newRecordingDispatcher()
		dispatcher.failFor[depB.ID] = true
		handler := NewRecalculateDependentsHandler(repo, dispatcher, nil)

		result, err := handler.Handle(ctx, RecalculateDependentsCommand{CompletedTaskID: completed})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{depA.ID, depC.ID}, result.Enqueued)
		assert.Equal(t, []uuid.UUID{depB.ID}, result.Failed)
	})

	t.Run("lookup failures propagate for retry", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.findErr = errors.New("connection reset")
		handler := NewRecalculateDependentsHandler(repo, newRecordingDispatcher(), nil)

		_, err := handler.Handle(ctx, RecalculateDependentsCommand{CompletedTaskID: uuid.New()})

		assert.Error(t, err)
	})
}

func TestRecalculateAreaTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues every incomplete task under the area", func(t *testing.T) {
		repo := newFakeTaskRepo()
		areaID := uuid.New()
		tasks := []*task.Task{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
		repo.byArea[areaID] = tasks

		dispatcher := newRecordingDispatcher()
		handler := NewRecalculateAreaTasksHandler(repo, dispatcher, nil)

		result, err := handler.Handle(ctx, RecalculateAreaTasksCommand{AreaID: areaID, NewImportance: 5})

		require.NoError(t, err)
		assert.Len(t, result.Enqueued, 3)
		assert.Len(t, dispatcher.enqueued, 3)
	})

	t.Run("lookup failures propagate for retry", func(t *testing.T) {
		repo := newFakeTaskRepo()
		repo.findErr = errors.New("timeout")
		handler := NewRecalculateAreaTasksHandler(repo, newRecordingDispatcher(), nil)

		_, err := handler.Handle(ctx, RecalculateAreaTasksCommand{AreaID: uuid.New()})

		assert.Error(t, err)
	})
}

func TestRecalculateProjectTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues every incomplete task in the project", func(t *testing.T) {
		repo := newFakeTaskRepo()
		projectID := uuid.New()
		tasks := []*task.Task{{ID: uuid.New()}, {ID: uuid.New()}}
		repo.byProject[projectID] = tasks

		dispatcher := newRecordingDispatcher()
		handler := NewRecalculateProjectTasksHandler(repo, dispatcher, nil)

		result, err := handler.Handle(ctx, RecalculateProjectTasksCommand{ProjectID: projectID, NewImportance: 2})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{tasks[0].ID, tasks[1].ID}, result.Enqueued)
	})

	t.Run("partial enqueue failure is reported per task", func(t *testing.T) {
		repo := newFakeTaskRepo()
		projectID := uuid.New()
		good := &task.Task{ID: uuid.New()}
		bad := &task.Task{ID: uuid.New()}
		repo.byProject[projectID] = []*task.Task{good, bad}

		dispatcher := newRecordingDispatcher()
		dispatcher.failFor[bad.ID] = true
		handler := NewRecalculateProjectTasksHandler(repo, dispatcher, nil)

		result, err := handler.Handle(ctx, RecalculateProjectTasksCommand{ProjectID: projectID})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{good.ID}, result.Enqueued)
		assert.Equal(t, []uuid.UUID{bad.ID}, result.Failed)
	})
}
