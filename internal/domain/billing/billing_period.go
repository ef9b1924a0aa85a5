package billing

import (
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodStatus represents the lifecycle status of a billing period
type PeriodStatus string

const (
	PeriodStatusDraft  PeriodStatus = "draft"  // Accruals may be (re)generated
	PeriodStatusLocked PeriodStatus = "locked" // Ledger frozen; unlock required before mutation
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	return s == PeriodStatusDraft || s == PeriodStatusLocked
}

// String returns the string representation
func (s PeriodStatus) String() string {
	return string(s)
}

// PeriodCategory distinguishes period containers created for different
// payment streams within the same calendar range.
type PeriodCategory string

const (
	PeriodCategoryGeneral  PeriodCategory = "general"
	PeriodCategoryElectric PeriodCategory = "electric"
)

// IsValid checks if the category is valid
func (c PeriodCategory) IsValid() bool {
	return c == PeriodCategoryGeneral || c == PeriodCategoryElectric
}

// BillingPeriod is a date range over which accruals are generated and
// eventually locked. Status transitions happen only through Lock/Unlock;
// no other code path may set Status directly.
type BillingPeriod struct {
	shared.BaseAggregateRoot
	DateFrom  time.Time      `json:"date_from"`
	DateTo    time.Time      `json:"date_to"`
	Category  PeriodCategory `json:"category"`
	Status    PeriodStatus   `json:"status"`
	UpdatedBy *uuid.UUID     `json:"updated_by"` // Actor of the last lifecycle transition
}

// NewBillingPeriod creates a new billing period in draft status
func NewBillingPeriod(from, to time.Time, category PeriodCategory) (*BillingPeriod, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Period must end after it starts")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Period category is not valid")
	}

	p := &BillingPeriod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DateFrom:          from,
		DateTo:            to,
		Category:          category,
		Status:            PeriodStatusDraft,
	}
	p.AddDomainEvent(NewBillingPeriodCreatedEvent(p))
	return p, nil
}

// NewMonthlyPeriod creates a draft period covering the calendar month of the given date
func NewMonthlyPeriod(date time.Time, category PeriodCategory) (*BillingPeriod, error) {
	from := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return NewBillingPeriod(from, to, category)
}

// Lock freezes the period ledger. Allowed only from draft.
func (p *BillingPeriod) Lock(actorID uuid.UUID) error {
	if p.Status != PeriodStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot lock period in %s status, must be draft", p.Status))
	}

	p.Status = PeriodStatusLocked
	p.UpdatedBy = &actorID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodLockedEvent(p, actorID))
	return nil
}

// Unlock reopens the period for accrual regeneration. Allowed only from locked.
func (p *BillingPeriod) Unlock(actorID uuid.UUID) error {
	if p.Status != PeriodStatusLocked {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot unlock period in %s status, must be locked", p.Status))
	}

	p.Status = PeriodStatusDraft
	p.UpdatedBy = &actorID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewBillingPeriodUnlockedEvent(p, actorID))
	return nil
}

// IsMutable reports whether accruals may be written for this period
func (p *BillingPeriod) IsMutable() bool {
	return p.Status == PeriodStatusDraft
}

// EnsureMutable returns a conflict error when the period is not in draft.
// Every mutating operation calls this before touching accrual rows, and
// again after re-reading the period inside its write transaction.
func (p *BillingPeriod) EnsureMutable() error {
	if !p.IsMutable() {
		return shared.NewDomainError("PERIOD_LOCKED",
			fmt.Sprintf("Billing period %s is locked", p.Label()))
	}
	return nil
}

// Midpoint returns the middle of the period's date range. Tariff selection
// for accrual generation is anchored to this date.
func (p *BillingPeriod) Midpoint() time.Time {
	return p.DateFrom.Add(p.DateTo.Sub(p.DateFrom) / 2)
}

// Contains reports whether the given date falls inside the period range
func (p *BillingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.DateFrom) && !date.After(p.DateTo)
}

// Label returns a human-readable period label, e.g. "2025-01"
func (p *BillingPeriod) Label() string {
	return p.DateFrom.Format("2006-01")
}
