package jobqueue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff(t *testing.T) {
	base := 60 * time.Second

	assert.Equal(t, 60*time.Second, RetryBackoff(base, 0))
	assert.Equal(t, 120*time.Second, RetryBackoff(base, 1))
	assert.Equal(t, 240*time.Second, RetryBackoff(base, 2))
	assert.Equal(t, 60*time.Second, RetryBackoff(base, -1))
}

func TestFatal(t *testing.T) {
	t.Run("marks an error non-retryable", func(t *testing.T) {
		err := Fatal(errors.New("bad payload"))

		assert.True(t, IsFatal(err))
		assert.EqualError(t, err, "bad payload")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", Fatal(errors.New("bad payload")))

		assert.True(t, IsFatal(err))
	})

	t.Run("plain errors are retryable", func(t *testing.T) {
		assert.False(t, IsFatal(errors.New("timeout")))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Fatal(nil))
	})
}

func TestNewJob(t *testing.T) {
	job, err := NewJob("scoring.task.recalculate", map[string]string{"task_id": "t1"})
	require.NoError(t, err)

	assert.NotEqual(t, "", job.JobID.String())
	assert.Equal(t, "scoring.task.recalculate", job.RoutingKey)
	assert.Equal(t, 0, job.Attempt)
	assert.False(t, job.EnqueuedAt.IsZero())
	assert.JSONEq(t, `{"task_id":"t1"}`, string(job.Payload))
}
