package shared

import (
	"context"

	"github.com/google/uuid"
)

// AuditEntry describes a single auditable mutation. Before/After carry
// compact state snapshots; the audit sink decides how to persist them.
type AuditEntry struct {
	ActorID    uuid.UUID      `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
}

// AuditRecorder is the port to the external audit-log collaborator.
// Every mutating operation in the billing core must emit an entry through it.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// NopAuditRecorder discards all entries. Used in tests.
type NopAuditRecorder struct{}

// Record implements AuditRecorder
func (NopAuditRecorder) Record(ctx context.Context, entry AuditEntry) {}
