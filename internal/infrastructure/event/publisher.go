// Package event dispatches domain events raised by the billing aggregates.
// The current sink is the structured log stream, the same pipeline the
// audit trail ships through.
package event

import (
	"context"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ZapEventPublisher writes domain events as structured log records
type ZapEventPublisher struct {
	log *zap.Logger
}

// NewZapEventPublisher creates an event publisher over the given logger
func NewZapEventPublisher(log *zap.Logger) *ZapEventPublisher {
	return &ZapEventPublisher{log: log.Named("events")}
}

// Publish implements shared.EventPublisher
func (p *ZapEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		fields := []zap.Field{
			zap.String("event_id", e.EventID().String()),
			zap.String("event_type", e.EventType()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.Time("occurred_at", e.OccurredAt()),
		}
		if traceID := telemetry.GetTraceID(ctx); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		p.log.Info("domain event", fields...)
	}
	return nil
}

var _ shared.EventPublisher = (*ZapEventPublisher)(nil)
