package billing

import (
	"context"
	"fmt"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// AccrualService generates and maintains the per-period accrual ledger
type AccrualService struct {
	txScope      TransactionScope
	periodRepo   billing.BillingPeriodRepository
	accrualRepo  billing.PeriodAccrualRepository
	plotRepo     billing.PlotRepository
	tariffRepo   billing.TariffRepository
	overrideRepo billing.TariffOverrideRepository
	resolver     *billing.TariffResolver
	locker       lock.PeriodLocker
	events       shared.EventPublisher
	audit        shared.AuditRecorder
}

// NewAccrualService creates a new AccrualService
func NewAccrualService(
	txScope TransactionScope,
	periodRepo billing.BillingPeriodRepository,
	accrualRepo billing.PeriodAccrualRepository,
	plotRepo billing.PlotRepository,
	tariffRepo billing.TariffRepository,
	overrideRepo billing.TariffOverrideRepository,
	locker lock.PeriodLocker,
	events shared.EventPublisher,
	audit shared.AuditRecorder,
) *AccrualService {
	return &AccrualService{
		txScope:      txScope,
		periodRepo:   periodRepo,
		accrualRepo:  accrualRepo,
		plotRepo:     plotRepo,
		tariffRepo:   tariffRepo,
		overrideRepo: overrideRepo,
		resolver:     billing.NewTariffResolver(),
		locker:       locker,
		events:       events,
		audit:        audit,
	}
}

// GenerateOptions controls one generation run. An empty Types list defaults
// to the tariff-driven charge types (membership and target). Electric lines
// are meter-driven and enter through UpsertElectricAccrual only.
type GenerateOptions struct {
	Force bool                 `json:"force"`
	Types []billing.ChargeType `json:"types"`
}

// AccrualDetail reports the outcome for one plot and charge type
type AccrualDetail struct {
	PlotID          uuid.UUID          `json:"plot_id"`
	PlotNumber      string             `json:"plot_number"`
	ChargeType      billing.ChargeType `json:"charge_type"`
	Amount          valueobject.Money  `json:"amount"`
	OverrideApplied bool               `json:"override_applied"`
	NeedsReview     bool               `json:"needs_review"`
	Action          string             `json:"action"` // created | updated
}

// GenerateResult summarizes one generation run
type GenerateResult struct {
	PeriodID  uuid.UUID       `json:"period_id"`
	PlotCount int             `json:"plot_count"`
	Generated int             `json:"generated"`
	Updated   int             `json:"updated"`
	Details   []AccrualDetail `json:"details"`
}

// Generate computes accrual lines for every active plot in the period.
// Re-running is an upsert on (period, plot, charge type): with Force the
// accrued side is recomputed while payments applied stay untouched; without
// Force existing rows for the requested types are a conflict.
func (s *AccrualService) Generate(ctx context.Context, periodID uuid.UUID, opts GenerateOptions, actorID uuid.UUID) (*GenerateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accrual", "generate")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriodID, periodID.String(),
		"force", opts.Force,
	)

	types := opts.Types
	if len(types) == 0 {
		types = []billing.ChargeType{billing.ChargeTypeMembership, billing.ChargeTypeTarget}
	}
	for _, t := range types {
		if !t.IsValid() {
			err := shared.NewDomainError("INVALID_CHARGE_TYPE", fmt.Sprintf("Unknown charge type %q", t))
			telemetry.RecordError(span, err)
			return nil, err
		}
		if t == billing.ChargeTypeElectric {
			err := shared.NewDomainError("INVALID_CHARGE_TYPE", "Electric accruals are meter-driven, use the electric entry endpoint")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	release, err := s.locker.Acquire(ctx, periodID.String(), periodLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	if period == nil {
		return nil, shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
	}
	if err := period.EnsureMutable(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	plots, err := s.plotRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load plots: %w", err)
	}
	if len(plots) == 0 {
		err := shared.NewDomainError("EMPTY_PLOT_REGISTRY", "No active plots to generate accruals for")
		telemetry.RecordError(span, err)
		return nil, err
	}

	// tariff selection is anchored to the period midpoint
	midpoint := period.Midpoint()
	tariffs, err := s.tariffRepo.FindActiveAt(ctx, midpoint)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load tariffs: %w", err)
	}

	selected := make(map[billing.ChargeType]*billing.Tariff, len(types))
	overrides := make(map[billing.ChargeType]map[uuid.UUID]*billing.TariffOverride, len(types))
	for _, chargeType := range types {
		tariff := s.resolver.SelectTariff(tariffs, tariffTypeFor(chargeType), midpoint)
		if tariff == nil {
			err := shared.NewDomainError("NO_ACTIVE_TARIFF",
				fmt.Sprintf("No active %s tariff on %s", chargeType, midpoint.Format("2006-01-02")))
			telemetry.RecordError(span, err)
			return nil, err
		}
		selected[chargeType] = tariff

		ovs, err := s.overrideRepo.FindByTariff(ctx, tariff.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
		overrides[chargeType] = billing.OverrideIndex(ovs)
	}

	result := &GenerateResult{
		PeriodID:  periodID,
		PlotCount: len(plots),
		Details:   make([]AccrualDetail, 0, len(plots)*len(types)),
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// status may have changed between the read above and here
		current, txErr := repos.PeriodRepo().FindByID(ctx, periodID)
		if txErr != nil {
			return fmt.Errorf("failed to re-read period: %w", txErr)
		}
		if current == nil {
			return shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
		}
		if txErr = current.EnsureMutable(); txErr != nil {
			return txErr
		}

		existing, txErr := repos.AccrualRepo().FindByPeriod(ctx, periodID)
		if txErr != nil {
			return fmt.Errorf("failed to load existing accruals: %w", txErr)
		}
		index := make(map[string]*billing.PeriodAccrual, len(existing))
		requested := make(map[billing.ChargeType]bool, len(types))
		for _, t := range types {
			requested[t] = true
		}
		for _, a := range existing {
			if requested[a.Type] {
				if !opts.Force {
					return shared.NewDomainError("ACCRUALS_EXIST",
						fmt.Sprintf("Accruals already generated for period %s, use force to regenerate", current.Label()))
				}
				index[accrualKey(a.PlotID, a.Type)] = a
			}
		}

		toSave := make([]*billing.PeriodAccrual, 0, len(plots)*len(types))
		for _, plot := range plots {
			for _, chargeType := range types {
				resolved, resErr := s.resolver.ResolveAmount(selected[chargeType], plot, overrides[chargeType])
				if resErr != nil {
					return resErr
				}

				note := billing.AccrualNoteNone
				if resolved.NeedsReview {
					note = billing.AccrualNoteNeedsReview
				}

				detail := AccrualDetail{
					PlotID:          plot.ID,
					PlotNumber:      plot.Number,
					ChargeType:      chargeType,
					Amount:          resolved.Amount,
					OverrideApplied: resolved.OverrideApplied,
					NeedsReview:     resolved.NeedsReview,
				}

				if line, ok := index[accrualKey(plot.ID, chargeType)]; ok {
					if txErr = line.Recompute(resolved.Amount, resolved.OverrideApplied, note); txErr != nil {
						return txErr
					}
					toSave = append(toSave, line)
					detail.Action = "updated"
					result.Updated++
				} else {
					line, txErr = billing.NewPeriodAccrual(periodID, plot.ID, chargeType, resolved.Amount, resolved.OverrideApplied, note)
					if txErr != nil {
						return txErr
					}
					toSave = append(toSave, line)
					detail.Action = "created"
					result.Generated++
				}
				result.Details = append(result.Details, detail)
			}
		}

		if txErr = repos.AccrualRepo().SaveAll(ctx, toSave); txErr != nil {
			return fmt.Errorf("failed to save accruals: %w", txErr)
		}

		s.audit.Record(ctx, shared.AuditEntry{
			ActorID:    actorID,
			Action:     "accrual.generate",
			EntityType: "BillingPeriod",
			EntityID:   periodID,
			After: map[string]any{
				"generated": result.Generated,
				"updated":   result.Updated,
				"force":     opts.Force,
			},
		})
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	_ = s.events.Publish(ctx, billing.NewAccrualsGeneratedEvent(periodID, types, result.Generated, result.Updated, 0))

	telemetry.AddEvent(span, "accruals_generated",
		"generated", result.Generated,
		"updated", result.Updated,
		"plot_count", result.PlotCount,
	)
	return result, nil
}

// UpsertElectricAccrual records a meter-driven electric charge for one plot.
// The upsert key is the same (period, plot, charge type) as generation, so
// a corrected reading replaces the accrued amount and keeps payments.
func (s *AccrualService) UpsertElectricAccrual(ctx context.Context, periodID, plotID uuid.UUID, amount valueobject.Money, actorID uuid.UUID) (*billing.PeriodAccrual, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accrual", "upsert_electric")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriodID, periodID.String(),
		telemetry.SpanAttrPlotID, plotID.String(),
		telemetry.SpanAttrAmount, amount.StringFixed(2),
	)

	if amount.IsNegative() {
		err := shared.NewDomainError("INVALID_AMOUNT", "Electric charge cannot be negative")
		telemetry.RecordError(span, err)
		return nil, err
	}

	plot, err := s.plotRepo.FindByID(ctx, plotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}
	if plot == nil {
		return nil, shared.NewDomainError("PLOT_NOT_FOUND", "Plot not found")
	}

	release, err := s.locker.Acquire(ctx, periodID.String(), periodLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	var line *billing.PeriodAccrual
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		period, txErr := repos.PeriodRepo().FindByID(ctx, periodID)
		if txErr != nil {
			return fmt.Errorf("failed to get period: %w", txErr)
		}
		if period == nil {
			return shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
		}
		if txErr = period.EnsureMutable(); txErr != nil {
			return txErr
		}

		line, txErr = repos.AccrualRepo().FindByPeriodPlotType(ctx, periodID, plotID, billing.ChargeTypeElectric)
		if txErr != nil {
			return fmt.Errorf("failed to look up accrual: %w", txErr)
		}

		action := "accrual.electric_create"
		if line != nil {
			action = "accrual.electric_update"
			if txErr = line.Recompute(amount, false, billing.AccrualNoteNone); txErr != nil {
				return txErr
			}
		} else {
			line, txErr = billing.NewPeriodAccrual(periodID, plotID, billing.ChargeTypeElectric, amount, false, billing.AccrualNoteNone)
			if txErr != nil {
				return txErr
			}
		}
		if txErr = repos.AccrualRepo().Save(ctx, line); txErr != nil {
			return fmt.Errorf("failed to save accrual: %w", txErr)
		}

		s.audit.Record(ctx, shared.AuditEntry{
			ActorID:    actorID,
			Action:     action,
			EntityType: "PeriodAccrual",
			EntityID:   line.ID,
			After: map[string]any{
				"plot_id": plotID.String(),
				"amount":  amount.StringFixed(2),
			},
		})
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return line, nil
}

// ListByPeriod returns the accrual ledger of one period
func (s *AccrualService) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]*billing.PeriodAccrual, error) {
	accruals, err := s.accrualRepo.FindByPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accruals: %w", err)
	}
	return accruals, nil
}

func accrualKey(plotID uuid.UUID, chargeType billing.ChargeType) string {
	return plotID.String() + "|" + string(chargeType)
}

func tariffTypeFor(chargeType billing.ChargeType) billing.TariffType {
	switch chargeType {
	case billing.ChargeTypeMembership:
		return billing.TariffTypeMember
	case billing.ChargeTypeTarget:
		return billing.TariffTypeTarget
	default:
		return billing.TariffTypeElectric
	}
}
