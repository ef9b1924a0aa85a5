package billing

import (
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RepaymentPlanStatus tracks the negotiation state of a debt repayment plan.
// Transitions are not enforced: this is an administrative record that staff
// maintain, not a workflow that the system drives.
type RepaymentPlanStatus string

const (
	RepaymentPlanStatusPending    RepaymentPlanStatus = "pending"
	RepaymentPlanStatusAgreed     RepaymentPlanStatus = "agreed"
	RepaymentPlanStatusInProgress RepaymentPlanStatus = "in_progress"
	RepaymentPlanStatusCompleted  RepaymentPlanStatus = "completed"
	RepaymentPlanStatusCancelled  RepaymentPlanStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s RepaymentPlanStatus) IsValid() bool {
	switch s {
	case RepaymentPlanStatusPending, RepaymentPlanStatusAgreed, RepaymentPlanStatusInProgress,
		RepaymentPlanStatusCompleted, RepaymentPlanStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the plan has reached a final state
func (s RepaymentPlanStatus) IsTerminal() bool {
	return s == RepaymentPlanStatusCompleted || s == RepaymentPlanStatusCancelled
}

// DebtRepaymentPlan records an agreement with a plot owner to pay off
// accumulated debt by a deadline. Plans do not change allocation: payments
// still flow oldest-first, the plan only tracks the commitment.
type DebtRepaymentPlan struct {
	shared.BaseAggregateRoot
	PlotID    uuid.UUID           `json:"plot_id"`
	PeriodID  *uuid.UUID          `json:"period_id"` // nil = plan covers debt across all periods
	TotalDebt valueobject.Money   `json:"total_debt"`
	Deadline  time.Time           `json:"deadline"`
	Status    RepaymentPlanStatus `json:"status"`
	Comment   string              `json:"comment"`
	CreatedBy uuid.UUID           `json:"created_by"`
	UpdatedBy *uuid.UUID          `json:"updated_by"`
}

// NewDebtRepaymentPlan creates a plan in pending status
func NewDebtRepaymentPlan(plotID uuid.UUID, periodID *uuid.UUID, totalDebt valueobject.Money, deadline time.Time, comment string, createdBy uuid.UUID) (*DebtRepaymentPlan, error) {
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLOT", "Plot ID cannot be empty")
	}
	if totalDebt.IsNegative() || totalDebt.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Plan debt must be positive")
	}
	if deadline.IsZero() {
		return nil, shared.NewDomainError("INVALID_DEADLINE", "Plan deadline is required")
	}

	return &DebtRepaymentPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlotID:            plotID,
		PeriodID:          periodID,
		TotalDebt:         totalDebt,
		Deadline:          deadline,
		Status:            RepaymentPlanStatusPending,
		Comment:           comment,
		CreatedBy:         createdBy,
	}, nil
}

// RepaymentPlanPatch carries optional field updates for a plan
type RepaymentPlanPatch struct {
	TotalDebt *valueobject.Money
	Deadline  *time.Time
	Status    *RepaymentPlanStatus
	Comment   *string
}

// ApplyPatch updates the provided fields. Any status value is accepted as
// long as it is a known one; moving out of a terminal state is allowed so
// staff can correct mistakes.
func (p *DebtRepaymentPlan) ApplyPatch(patch RepaymentPlanPatch, actorID uuid.UUID) error {
	if patch.TotalDebt != nil {
		if patch.TotalDebt.IsNegative() || patch.TotalDebt.IsZero() {
			return shared.NewDomainError("INVALID_AMOUNT", "Plan debt must be positive")
		}
		p.TotalDebt = *patch.TotalDebt
	}
	if patch.Deadline != nil {
		if patch.Deadline.IsZero() {
			return shared.NewDomainError("INVALID_DEADLINE", "Plan deadline is required")
		}
		p.Deadline = *patch.Deadline
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Plan status is not valid")
		}
		p.Status = *patch.Status
	}
	if patch.Comment != nil {
		p.Comment = *patch.Comment
	}

	p.UpdatedBy = &actorID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsOverdue reports whether the deadline has passed without completion
func (p *DebtRepaymentPlan) IsOverdue(now time.Time) bool {
	return !p.Status.IsTerminal() && now.After(p.Deadline)
}

// CoversPeriod reports whether the plan applies to the given period key.
// A plan without a period covers the plot's whole debt.
func (p *DebtRepaymentPlan) CoversPeriod(periodID *uuid.UUID) bool {
	if p.PeriodID == nil && periodID == nil {
		return true
	}
	if p.PeriodID == nil || periodID == nil {
		return false
	}
	return *p.PeriodID == *periodID
}
