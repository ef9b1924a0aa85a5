package billing

import (
	"context"
	"fmt"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// TariffOverrideService manages per-plot tariff exceptions. Overrides are
// immutable rows: corrections go through delete and re-create.
type TariffOverrideService struct {
	overrideRepo billing.TariffOverrideRepository
	tariffRepo   billing.TariffRepository
	plotRepo     billing.PlotRepository
	audit        shared.AuditRecorder
}

// NewTariffOverrideService creates a new TariffOverrideService
func NewTariffOverrideService(
	overrideRepo billing.TariffOverrideRepository,
	tariffRepo billing.TariffRepository,
	plotRepo billing.PlotRepository,
	audit shared.AuditRecorder,
) *TariffOverrideService {
	return &TariffOverrideService{
		overrideRepo: overrideRepo,
		tariffRepo:   tariffRepo,
		plotRepo:     plotRepo,
		audit:        audit,
	}
}

// CreateOverrideRequest carries override creation inputs
type CreateOverrideRequest struct {
	TariffID uuid.UUID         `json:"tariff_id"`
	PlotID   uuid.UUID         `json:"plot_id"`
	Amount   valueobject.Money `json:"amount"`
	Comment  string            `json:"comment"`
}

// Create adds an override after checking both foreign entities exist
func (s *TariffOverrideService) Create(ctx context.Context, req CreateOverrideRequest, actorID uuid.UUID) (*billing.TariffOverride, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tariff_override", "create")
	defer span.End()

	tariff, err := s.tariffRepo.FindByID(ctx, req.TariffID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get tariff: %w", err)
	}
	if tariff == nil {
		return nil, shared.NewDomainError("TARIFF_NOT_FOUND", "Tariff not found")
	}
	plot, err := s.plotRepo.FindByID(ctx, req.PlotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}
	if plot == nil {
		return nil, shared.NewDomainError("PLOT_NOT_FOUND", "Plot not found")
	}

	existing, err := s.overrideRepo.FindByTariff(ctx, req.TariffID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	for _, ov := range existing {
		if ov.PlotID == req.PlotID {
			err := shared.NewDomainError("OVERRIDE_EXISTS", "An override for this tariff and plot already exists, delete it first")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	override, err := billing.NewTariffOverride(req.TariffID, req.PlotID, req.Amount, req.Comment, actorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.overrideRepo.Save(ctx, override); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save override: %w", err)
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    actorID,
		Action:     "tariff_override.create",
		EntityType: "TariffOverride",
		EntityID:   override.ID,
		After: map[string]any{
			"tariff_id": req.TariffID.String(),
			"plot_id":   req.PlotID.String(),
			"amount":    req.Amount.StringFixed(2),
		},
	})
	return override, nil
}

// Delete removes an override
func (s *TariffOverrideService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "tariff_override", "delete")
	defer span.End()

	override, err := s.overrideRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get override: %w", err)
	}
	if override == nil {
		return shared.NewDomainError("OVERRIDE_NOT_FOUND", "Tariff override not found")
	}

	if err := s.overrideRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete override: %w", err)
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    actorID,
		Action:     "tariff_override.delete",
		EntityType: "TariffOverride",
		EntityID:   id,
		Before: map[string]any{
			"tariff_id": override.TariffID.String(),
			"plot_id":   override.PlotID.String(),
			"amount":    override.Amount.StringFixed(2),
		},
	})
	return nil
}

// ListByTariff returns all overrides of one tariff
func (s *TariffOverrideService) ListByTariff(ctx context.Context, tariffID uuid.UUID) ([]*billing.TariffOverride, error) {
	return s.overrideRepo.FindByTariff(ctx, tariffID)
}
