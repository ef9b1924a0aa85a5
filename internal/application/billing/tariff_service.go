package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// TariffService manages the tariff catalog
type TariffService struct {
	tariffRepo billing.TariffRepository
	audit      shared.AuditRecorder
}

// NewTariffService creates a new TariffService
func NewTariffService(tariffRepo billing.TariffRepository, audit shared.AuditRecorder) *TariffService {
	return &TariffService{tariffRepo: tariffRepo, audit: audit}
}

// CreateTariffRequest carries tariff creation inputs
type CreateTariffRequest struct {
	Name       string             `json:"name"`
	Type       billing.TariffType `json:"type"`
	Unit       billing.TariffUnit `json:"unit"`
	Amount     valueobject.Money  `json:"amount"`
	ActiveFrom time.Time          `json:"active_from"`
	ActiveTo   *time.Time         `json:"active_to"`
}

// Create adds a tariff in draft status
func (s *TariffService) Create(ctx context.Context, req CreateTariffRequest, actorID uuid.UUID) (*billing.Tariff, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tariff", "create")
	defer span.End()

	tariff, err := billing.NewTariff(req.Name, req.Type, req.Unit, req.Amount, req.ActiveFrom, req.ActiveTo)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.tariffRepo.Save(ctx, tariff); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save tariff: %w", err)
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    actorID,
		Action:     "tariff.create",
		EntityType: "Tariff",
		EntityID:   tariff.ID,
		After: map[string]any{
			"name":   tariff.Name,
			"type":   string(tariff.Type),
			"amount": tariff.Amount.StringFixed(2),
		},
	})
	return tariff, nil
}

// SetStatus moves a tariff between draft, active and archived
func (s *TariffService) SetStatus(ctx context.Context, id uuid.UUID, status billing.TariffStatus, actorID uuid.UUID) (*billing.Tariff, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tariff", "set_status")
	defer span.End()

	if !status.IsValid() {
		err := shared.NewDomainError("INVALID_STATUS", "Tariff status is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}

	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get tariff: %w", err)
	}
	if tariff == nil {
		return nil, shared.NewDomainError("TARIFF_NOT_FOUND", "Tariff not found")
	}

	before := tariff.Status
	tariff.Status = status
	tariff.UpdatedAt = time.Now()
	tariff.IncrementVersion()
	if err := s.tariffRepo.Save(ctx, tariff); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save tariff: %w", err)
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    actorID,
		Action:     "tariff.set_status",
		EntityType: "Tariff",
		EntityID:   tariff.ID,
		Before:     map[string]any{"status": string(before)},
		After:      map[string]any{"status": string(status)},
	})
	return tariff, nil
}

// Get loads a tariff by ID
func (s *TariffService) Get(ctx context.Context, id uuid.UUID) (*billing.Tariff, error) {
	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tariff: %w", err)
	}
	if tariff == nil {
		return nil, shared.NewDomainError("TARIFF_NOT_FOUND", "Tariff not found")
	}
	return tariff, nil
}

// List returns tariffs page by page
func (s *TariffService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Tariff], error) {
	return s.tariffRepo.FindAll(ctx, filter)
}
