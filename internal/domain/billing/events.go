package billing

import (
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BillingPeriodCreatedEvent is raised when a new billing period is opened
type BillingPeriodCreatedEvent struct {
	shared.BaseDomainEvent
	Period *BillingPeriod `json:"period"`
}

func NewBillingPeriodCreatedEvent(period *BillingPeriod) *BillingPeriodCreatedEvent {
	return &BillingPeriodCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("billing_period.created", "BillingPeriod", period.ID),
		Period:          period,
	}
}

// BillingPeriodLockedEvent is raised when a period transitions draft to locked
type BillingPeriodLockedEvent struct {
	shared.BaseDomainEvent
	Period  *BillingPeriod `json:"period"`
	ActorID uuid.UUID      `json:"actor_id"`
}

func NewBillingPeriodLockedEvent(period *BillingPeriod, actorID uuid.UUID) *BillingPeriodLockedEvent {
	return &BillingPeriodLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("billing_period.locked", "BillingPeriod", period.ID),
		Period:          period,
		ActorID:         actorID,
	}
}

// BillingPeriodUnlockedEvent is raised when a locked period is reopened
type BillingPeriodUnlockedEvent struct {
	shared.BaseDomainEvent
	Period  *BillingPeriod `json:"period"`
	ActorID uuid.UUID      `json:"actor_id"`
}

func NewBillingPeriodUnlockedEvent(period *BillingPeriod, actorID uuid.UUID) *BillingPeriodUnlockedEvent {
	return &BillingPeriodUnlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("billing_period.unlocked", "BillingPeriod", period.ID),
		Period:          period,
		ActorID:         actorID,
	}
}

// AccrualsGeneratedEvent is raised after a generation run writes accrual lines
type AccrualsGeneratedEvent struct {
	shared.BaseDomainEvent
	PeriodID     uuid.UUID    `json:"period_id"`
	ChargeTypes  []ChargeType `json:"charge_types"`
	CreatedCount int          `json:"created_count"`
	UpdatedCount int          `json:"updated_count"`
	SkippedCount int          `json:"skipped_count"`
}

func NewAccrualsGeneratedEvent(periodID uuid.UUID, types []ChargeType, created, updated, skipped int) *AccrualsGeneratedEvent {
	return &AccrualsGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("accruals.generated", "BillingPeriod", periodID),
		PeriodID:        periodID,
		ChargeTypes:     types,
		CreatedCount:    created,
		UpdatedCount:    updated,
		SkippedCount:    skipped,
	}
}

// PaymentImportedEvent is raised when a payment is created
type PaymentImportedEvent struct {
	shared.BaseDomainEvent
	Payment *Payment `json:"payment"`
}

func NewPaymentImportedEvent(payment *Payment) *PaymentImportedEvent {
	return &PaymentImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("payment.imported", "Payment", payment.ID),
		Payment:         payment,
	}
}

// PaymentAllocatedEvent is raised after a payment is allocated to accruals
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID         `json:"payment_id"`
	PlotID      uuid.UUID         `json:"plot_id"`
	Allocated   valueobject.Money `json:"allocated"`
	Unallocated valueobject.Money `json:"unallocated"`
}

func NewPaymentAllocatedEvent(payment *Payment) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("payment.allocated", "Payment", payment.ID),
		PaymentID:       payment.ID,
		PlotID:          payment.PlotID,
		Allocated:       payment.AllocatedAmount,
		Unallocated:     payment.UnallocatedAmount,
	}
}
