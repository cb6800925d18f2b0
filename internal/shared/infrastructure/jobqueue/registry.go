package jobqueue

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerRegistry maps routing keys to job handlers and dispatches jobs.
type HandlerRegistry struct {
	handlers map[string][]JobHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{
		handlers: make(map[string][]JobHandler),
		logger:   logger,
	}
}

// Register adds a handler for its declared routing keys.
func (r *HandlerRegistry) Register(handler JobHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range handler.RoutingKeys() {
		r.handlers[key] = append(r.handlers[key], handler)
		r.logger.Debug("registered job handler", "routing_key", key)
	}
}

// Handlers returns the handlers registered for the routing key.
func (r *HandlerRegistry) Handlers(routingKey string) []JobHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handlers[routingKey]
}

// RoutingKeys returns every routing key with at least one handler.
func (r *HandlerRegistry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	return keys
}

// Dispatch routes a job to all handlers for its routing key. All handlers
// run even when one fails; the last failure is returned so the consumer can
// schedule a retry.
func (r *HandlerRegistry) Dispatch(ctx context.Context, job *Job) error {
	handlers := r.Handlers(job.RoutingKey)

	if len(handlers) == 0 {
		r.logger.Debug("no handlers for routing key", "routing_key", job.RoutingKey)
		return nil
	}

	var lastErr error
	for _, h := range handlers {
		if err := h.Handle(ctx, job); err != nil {
			r.logger.Error("job handler failed",
				"routing_key", job.RoutingKey,
				"job_id", job.JobID,
				"error", err,
			)
			lastErr = err
		}
	}

	return lastErr
}

// HandlerCount returns the total number of registered handler instances.
func (r *HandlerRegistry) HandlerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, hs := range r.handlers {
		count += len(hs)
	}
	return count
}
