package jobqueue

import "context"

// Publisher sends encoded job envelopes to a broker.
type Publisher interface {
	// Publish sends a message with the given routing key.
	Publish(ctx context.Context, routingKey string, body []byte) error

	// Close closes the publisher connection.
	Close() error
}
