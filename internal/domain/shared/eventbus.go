package shared

import "context"

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// NopEventPublisher discards events. Used where dispatch is not wired.
type NopEventPublisher struct{}

// Publish implements EventPublisher
func (NopEventPublisher) Publish(ctx context.Context, events ...DomainEvent) error {
	return nil
}
