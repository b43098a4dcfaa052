package infrastructure

import (
	"lottohouse/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// Useful for tests and admin commands where events should not be delivered.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
