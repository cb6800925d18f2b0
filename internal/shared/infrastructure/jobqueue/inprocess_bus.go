package jobqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// InProcessBus is an in-memory job bus for local mode (no RabbitMQ). Jobs
// are dispatched synchronously to registered handlers; there is no retry.
// The registry guards its own state, so Publish holds no lock of its own
// and handlers may publish follow-up jobs from the same goroutine.
type InProcessBus struct {
	registry *HandlerRegistry
	logger   *slog.Logger
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewHandlerRegistry(logger),
		logger:   logger,
	}
}

// RegisterHandler registers a job handler.
func (b *InProcessBus) RegisterHandler(handler JobHandler) {
	b.registry.Register(handler)
}

// Publish decodes the envelope and dispatches it synchronously. Implements
// the Publisher interface so callers cannot tell local mode apart.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, body []byte) error {
	job := &Job{}
	if err := json.Unmarshal(body, job); err != nil {
		b.logger.Error("failed to unmarshal job",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}

	if job.RoutingKey == "" {
		job.RoutingKey = routingKey
	}

	start := time.Now()
	err := b.registry.Dispatch(ctx, job)
	duration := time.Since(start)

	if err != nil {
		// Local mode logs failures instead of failing the publish.
		b.logger.Error("job dispatch failed",
			"routing_key", job.RoutingKey,
			"job_id", job.JobID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil
	}

	b.logger.Debug("job dispatched",
		"routing_key", job.RoutingKey,
		"job_id", job.JobID,
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}

// Close does nothing for the in-process bus.
func (b *InProcessBus) Close() error { return nil }
