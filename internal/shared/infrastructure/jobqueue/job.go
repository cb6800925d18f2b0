package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is the envelope carried on the queue for every scoring job. Attempt
// counts how many times the job has been retried; it travels with the
// envelope so redeliveries through the retry queue keep their history.
type Job struct {
	JobID      uuid.UUID       `json:"job_id"`
	RoutingKey string          `json:"routing_key"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempt    int             `json:"attempt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewJob wraps a payload into a fresh envelope for the given routing key.
func NewJob(routingKey string, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	return &Job{
		JobID:      uuid.New(),
		RoutingKey: routingKey,
		EnqueuedAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// Encode serializes the envelope for transport.
func (j *Job) Encode() ([]byte, error) {
	body, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	return body, nil
}

// JobHandler processes jobs for specific routing keys.
type JobHandler interface {
	// RoutingKeys returns the routing keys this handler consumes,
	// e.g. ["scoring.task.recalculate"].
	RoutingKeys() []string

	// Handle processes the job. A plain error requests a retry; wrap it
	// with Fatal to drop the job instead.
	Handle(ctx context.Context, job *Job) error
}

// Consumer consumes jobs from a broker.
type Consumer interface {
	// Start begins consuming. This is a blocking call.
	Start(ctx context.Context) error

	// RegisterHandler registers a job handler.
	RegisterHandler(handler JobHandler)

	// Close closes the consumer connection.
	Close() error
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks an error as non-retryable. The consumer drops the job instead
// of routing it through the retry queue.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err carries the non-retryable marker.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// RetryBackoff returns the delay before retry number attempt, doubling from
// base each time: base, 2*base, 4*base, ...
func RetryBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	return base << uint(attempt)
}
