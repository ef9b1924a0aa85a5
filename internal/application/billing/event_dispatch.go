package billing

import (
	"context"

	"github.com/hoa/backend/internal/domain/shared"
)

// publishEvents flushes an aggregate's recorded events to the publisher.
// Dispatch is best effort, a failing sink never rolls back the operation
// that raised the events.
func publishEvents(ctx context.Context, pub shared.EventPublisher, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = pub.Publish(ctx, events...)
	agg.ClearDomainEvents()
}
