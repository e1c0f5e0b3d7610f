package eventbus

import "context"

// Publisher sends serialized domain events to a message broker.
type Publisher interface {
	// Publish sends a payload with the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases broker resources.
	Close() error
}

// NoopPublisher discards every message. Used in development when no broker
// is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops messages.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish discards the payload.
func (p *NoopPublisher) Publish(_ context.Context, _ string, _ []byte) error {
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}
