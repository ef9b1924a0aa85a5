// Package audit ships mutation records to the association's audit-log
// collaborator. The current sink is the structured log stream, which the
// log pipeline forwards.
package audit

import (
	"context"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ZapRecorder writes audit entries as structured log records
type ZapRecorder struct {
	log *zap.Logger
}

// NewZapRecorder creates an audit recorder over the given logger
func NewZapRecorder(log *zap.Logger) *ZapRecorder {
	return &ZapRecorder{log: log.Named("audit")}
}

// Record implements shared.AuditRecorder
func (r *ZapRecorder) Record(ctx context.Context, entry shared.AuditEntry) {
	fields := []zap.Field{
		zap.String("actor_id", entry.ActorID.String()),
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID.String()),
	}
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if entry.Before != nil {
		fields = append(fields, zap.Any("before", entry.Before))
	}
	if entry.After != nil {
		fields = append(fields, zap.Any("after", entry.After))
	}
	r.log.Info("audit", fields...)
}
