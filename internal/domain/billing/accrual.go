package billing

import (
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeType categorizes a ledger line by what is being charged
type ChargeType string

const (
	ChargeTypeMembership ChargeType = "membership"
	ChargeTypeTarget     ChargeType = "target"
	ChargeTypeElectric   ChargeType = "electric"
)

// IsValid checks if the charge type is valid
func (t ChargeType) IsValid() bool {
	switch t {
	case ChargeTypeMembership, ChargeTypeTarget, ChargeTypeElectric:
		return true
	}
	return false
}

// String returns the string representation
func (t ChargeType) String() string {
	return string(t)
}

// AllChargeTypes returns all valid charge types
func AllChargeTypes() []ChargeType {
	return []ChargeType{ChargeTypeMembership, ChargeTypeTarget, ChargeTypeElectric}
}

// AccrualNote flags ledger lines that need staff attention
type AccrualNote string

const (
	// AccrualNoteNone marks a cleanly computed accrual
	AccrualNoteNone AccrualNote = ""
	// AccrualNoteNeedsReview marks an accrual whose amount could not be
	// computed (missing plot area, no applicable tariff). The row is still
	// written so one bad plot never blocks the whole generation run.
	AccrualNoteNeedsReview AccrualNote = "needs_review"
)

// PeriodAccrual is the ledger line: a charge recorded against a plot for a
// billing period and charge type. At most one accrual exists per
// (period, plot, charge type); generation upserts on that key.
type PeriodAccrual struct {
	shared.BaseAggregateRoot
	PeriodID        uuid.UUID         `json:"period_id"`
	PlotID          uuid.UUID         `json:"plot_id"`
	Type            ChargeType        `json:"type"`
	AmountAccrued   valueobject.Money `json:"amount_accrued"`
	AmountPaid      valueobject.Money `json:"amount_paid"` // Running total allocated from payments
	OverrideApplied bool              `json:"override_applied"`
	Note            AccrualNote       `json:"note"`
}

// NewPeriodAccrual creates a new accrual row
func NewPeriodAccrual(periodID, plotID uuid.UUID, chargeType ChargeType, accrued valueobject.Money, overrideApplied bool, note AccrualNote) (*PeriodAccrual, error) {
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period ID cannot be empty")
	}
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLOT", "Plot ID cannot be empty")
	}
	if !chargeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHARGE_TYPE", "Charge type is not valid")
	}
	if accrued.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Accrued amount cannot be negative")
	}

	return &PeriodAccrual{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PeriodID:          periodID,
		PlotID:            plotID,
		Type:              chargeType,
		AmountAccrued:     accrued,
		AmountPaid:        valueobject.Zero(),
		OverrideApplied:   overrideApplied,
		Note:              note,
	}, nil
}

// NewNeedsReviewAccrual creates a zero-amount accrual flagged for staff review
func NewNeedsReviewAccrual(periodID, plotID uuid.UUID, chargeType ChargeType) (*PeriodAccrual, error) {
	return NewPeriodAccrual(periodID, plotID, chargeType, valueobject.Zero(), false, AccrualNoteNeedsReview)
}

// Recompute overwrites the accrued amount after a forced regeneration.
// The paid running total is preserved: payments already allocated against
// this line must survive a recompute.
func (a *PeriodAccrual) Recompute(accrued valueobject.Money, overrideApplied bool, note AccrualNote) error {
	if accrued.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Accrued amount cannot be negative")
	}

	a.AmountAccrued = accrued
	a.OverrideApplied = overrideApplied
	a.Note = note
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// ApplyPayment adds an allocated amount to the paid running total.
// The allocation strategy caps amounts at Outstanding, so an attempt to
// exceed the accrued amount is a programming error and is rejected.
func (a *PeriodAccrual) ApplyPayment(amount valueobject.Money) error {
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if a.AmountPaid.Add(amount).GreaterThan(a.AmountAccrued) {
		return shared.NewDomainError("EXCEEDS_ACCRUED",
			fmt.Sprintf("Allocation %s exceeds outstanding %s on accrual %s",
				amount.StringFixed(2), a.Outstanding().StringFixed(2), a.ID))
	}

	a.AmountPaid = a.AmountPaid.Add(amount)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Outstanding returns the unpaid remainder, never negative
func (a *PeriodAccrual) Outstanding() valueobject.Money {
	out := a.AmountAccrued.Subtract(a.AmountPaid)
	if out.IsNegative() {
		return valueobject.Zero()
	}
	return out
}

// IsSettled reports whether the accrual is fully paid
func (a *PeriodAccrual) IsSettled() bool {
	return a.Outstanding().IsZero()
}

// NeedsReview reports whether the accrual is flagged for staff attention
func (a *PeriodAccrual) NeedsReview() bool {
	return a.Note == AccrualNoteNeedsReview
}
