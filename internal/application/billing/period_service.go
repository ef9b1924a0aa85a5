package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// periodLockTTL bounds how long a crashed operation can block a period
const periodLockTTL = 2 * time.Minute

// PeriodService manages billing period lifecycle
type PeriodService struct {
	txScope    TransactionScope
	periodRepo billing.BillingPeriodRepository
	locker     lock.PeriodLocker
	events     shared.EventPublisher
	audit      shared.AuditRecorder
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(
	txScope TransactionScope,
	periodRepo billing.BillingPeriodRepository,
	locker lock.PeriodLocker,
	events shared.EventPublisher,
	audit shared.AuditRecorder,
) *PeriodService {
	return &PeriodService{
		txScope:    txScope,
		periodRepo: periodRepo,
		locker:     locker,
		events:     events,
		audit:      audit,
	}
}

// CreatePeriodRequest carries inputs for creating a billing period
type CreatePeriodRequest struct {
	DateFrom time.Time               `json:"date_from"`
	DateTo   time.Time               `json:"date_to"`
	Category billing.PeriodCategory  `json:"category"`
}

// Create opens a new draft billing period. Overlapping an existing period
// of the same category in the same month is rejected.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*billing.BillingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing_period", "create")
	defer span.End()

	period, err := billing.NewBillingPeriod(req.DateFrom, req.DateTo, req.Category)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.periodRepo.FindByDateAndCategory(ctx, period.Midpoint(), req.Category)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check existing periods: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("PERIOD_EXISTS",
			fmt.Sprintf("A %s period already covers %s", req.Category, existing.Label()))
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	publishEvents(ctx, s.events, period)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriodID, period.ID.String(),
		telemetry.SpanAttrPeriodLabel, period.Label(),
	)
	return period, nil
}

// EnsurePeriodFor returns the period covering the given date and category,
// creating a draft monthly container when none exists. Idempotent per
// (month, category).
func (s *PeriodService) EnsurePeriodFor(ctx context.Context, date time.Time, category billing.PeriodCategory) (*billing.BillingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing_period", "ensure_for")
	defer span.End()

	existing, err := s.periodRepo.FindByDateAndCategory(ctx, date, category)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to look up period: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	period, err := billing.NewMonthlyPeriod(date, category)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		// a concurrent caller may have created the same month
		if raced, lookupErr := s.periodRepo.FindByDateAndCategory(ctx, date, category); lookupErr == nil && raced != nil {
			return raced, nil
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	publishEvents(ctx, s.events, period)
	return period, nil
}

// Get loads a period by ID
func (s *PeriodService) Get(ctx context.Context, id uuid.UUID) (*billing.BillingPeriod, error) {
	period, err := s.periodRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	if period == nil {
		return nil, shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
	}
	return period, nil
}

// List returns periods page by page
func (s *PeriodService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.BillingPeriod], error) {
	return s.periodRepo.FindAll(ctx, filter)
}

// Lock freezes a draft period's ledger
func (s *PeriodService) Lock(ctx context.Context, periodID, actorID uuid.UUID) (*billing.BillingPeriod, error) {
	return s.transition(ctx, periodID, actorID, "lock", (*billing.BillingPeriod).Lock)
}

// Unlock reopens a locked period for regeneration
func (s *PeriodService) Unlock(ctx context.Context, periodID, actorID uuid.UUID) (*billing.BillingPeriod, error) {
	return s.transition(ctx, periodID, actorID, "unlock", (*billing.BillingPeriod).Unlock)
}

func (s *PeriodService) transition(
	ctx context.Context,
	periodID, actorID uuid.UUID,
	action string,
	apply func(*billing.BillingPeriod, uuid.UUID) error,
) (*billing.BillingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing_period", action)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriodID, periodID.String(),
		telemetry.SpanAttrActorID, actorID.String(),
	)

	release, err := s.locker.Acquire(ctx, periodID.String(), periodLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	var period *billing.BillingPeriod
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		period, txErr = repos.PeriodRepo().FindByID(ctx, periodID)
		if txErr != nil {
			return fmt.Errorf("failed to get period: %w", txErr)
		}
		if period == nil {
			return shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
		}

		statusBefore := period.Status
		if txErr = apply(period, actorID); txErr != nil {
			return txErr
		}
		if txErr = repos.PeriodRepo().SaveWithLock(ctx, period); txErr != nil {
			return txErr
		}

		s.audit.Record(ctx, shared.AuditEntry{
			ActorID:    actorID,
			Action:     "billing_period." + action,
			EntityType: "BillingPeriod",
			EntityID:   period.ID,
			Before:     map[string]any{"status": string(statusBefore)},
			After:      map[string]any{"status": string(period.Status)},
		})
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.events, period)
	return period, nil
}
