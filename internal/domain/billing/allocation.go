package billing

import (
	"sort"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AllocationLine records one payment-to-accrual application
type AllocationLine struct {
	AccrualID uuid.UUID         `json:"accrual_id"`
	Amount    valueobject.Money `json:"amount"`
}

// AllocationResult summarizes one allocation run for a payment
type AllocationResult struct {
	PaymentID   uuid.UUID         `json:"payment_id"`
	Lines       []AllocationLine  `json:"lines"`
	Allocated   valueobject.Money `json:"allocated"`
	Unallocated valueobject.Money `json:"unallocated"`
}

// AllocationStrategy distributes a payment across the plot's open accruals
type AllocationStrategy interface {
	Allocate(payment *Payment, accruals []*PeriodAccrual) (*AllocationResult, error)
	Name() string
}

// OldestFirstStrategy applies the payment to accruals ordered by period
// start date, oldest debt first. Each line is filled up to its outstanding
// amount before the next one receives anything. The remainder stays on the
// payment as an unallocated credit.
type OldestFirstStrategy struct {
	periodStarts map[uuid.UUID]int64 // period id -> unix start, for ordering
}

// NewOldestFirstStrategy creates the strategy with a period ordering index.
// The index maps period IDs to a sortable start instant; accruals whose
// period is missing from the index sort last.
func NewOldestFirstStrategy(periodStarts map[uuid.UUID]int64) *OldestFirstStrategy {
	return &OldestFirstStrategy{periodStarts: periodStarts}
}

// Name returns the strategy identifier
func (s *OldestFirstStrategy) Name() string {
	return "oldest_first"
}

// Allocate distributes the payment's unallocated remainder across open
// accruals of the payment's plot and category, oldest period first.
// Accruals of other plots or categories and settled lines are skipped.
func (s *OldestFirstStrategy) Allocate(payment *Payment, accruals []*PeriodAccrual) (*AllocationResult, error) {
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_REQUIRED", "Payment is required for allocation")
	}
	if payment.IsVoided() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot allocate a voided payment")
	}

	open := make([]*PeriodAccrual, 0, len(accruals))
	for _, a := range accruals {
		if a.PlotID != payment.PlotID || a.Type != payment.Category {
			continue
		}
		if a.Outstanding().IsPositive() {
			open = append(open, a)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return s.periodStart(open[i].PeriodID) < s.periodStart(open[j].PeriodID)
	})

	result := &AllocationResult{
		PaymentID: payment.ID,
		Lines:     make([]AllocationLine, 0, len(open)),
	}

	for _, accrual := range open {
		if payment.UnallocatedAmount.IsZero() {
			break
		}
		portion := valueobject.Min(payment.UnallocatedAmount, accrual.Outstanding())
		if !portion.IsPositive() {
			continue
		}
		if err := accrual.ApplyPayment(portion); err != nil {
			return nil, err
		}
		if err := payment.Allocate(portion); err != nil {
			return nil, err
		}
		result.Lines = append(result.Lines, AllocationLine{AccrualID: accrual.ID, Amount: portion})
	}

	result.Allocated = payment.AllocatedAmount
	result.Unallocated = payment.UnallocatedAmount
	payment.AddDomainEvent(NewPaymentAllocatedEvent(payment))
	return result, nil
}

func (s *OldestFirstStrategy) periodStart(periodID uuid.UUID) int64 {
	if start, ok := s.periodStarts[periodID]; ok {
		return start
	}
	return int64(^uint64(0) >> 1)
}
