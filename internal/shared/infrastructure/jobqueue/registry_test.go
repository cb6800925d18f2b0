package jobqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	keys    []string
	handled []*Job
	err     error
}

func (h *testHandler) RoutingKeys() []string { return h.keys }

func (h *testHandler) Handle(ctx context.Context, job *Job) error {
	h.handled = append(h.handled, job)
	return h.err
}

func TestHandlerRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches to the matching handler", func(t *testing.T) {
		registry := NewHandlerRegistry(nil)
		h := &testHandler{keys: []string{"scoring.task.recalculate"}}
		registry.Register(h)

		job, err := NewJob("scoring.task.recalculate", map[string]string{"task_id": "t1"})
		require.NoError(t, err)

		require.NoError(t, registry.Dispatch(ctx, job))
		require.Len(t, h.handled, 1)
		assert.Equal(t, job.JobID, h.handled[0].JobID)
	})

	t.Run("unmatched routing key is a no-op", func(t *testing.T) {
		registry := NewHandlerRegistry(nil)
		h := &testHandler{keys: []string{"scoring.task.recalculate"}}
		registry.Register(h)

		job, err := NewJob("scoring.bulk.initialize", struct{}{})
		require.NoError(t, err)

		require.NoError(t, registry.Dispatch(ctx, job))
		assert.Empty(t, h.handled)
	})

	t.Run("one handler can serve several keys", func(t *testing.T) {
		registry := NewHandlerRegistry(nil)
		h := &testHandler{keys: []string{"scoring.task.recalculate", "scoring.task.completed"}}
		registry.Register(h)

		assert.ElementsMatch(t, []string{"scoring.task.recalculate", "scoring.task.completed"}, registry.RoutingKeys())
		assert.Equal(t, 2, registry.HandlerCount())
	})

	t.Run("all handlers run even when one fails", func(t *testing.T) {
		registry := NewHandlerRegistry(nil)
		failing := &testHandler{keys: []string{"scoring.task.completed"}, err: errors.New("boom")}
		ok := &testHandler{keys: []string{"scoring.task.completed"}}
		registry.Register(failing)
		registry.Register(ok)

		job, err := NewJob("scoring.task.completed", struct{}{})
		require.NoError(t, err)

		assert.Error(t, registry.Dispatch(ctx, job))
		assert.Len(t, failing.handled, 1)
		assert.Len(t, ok.handled, 1)
	})
}
