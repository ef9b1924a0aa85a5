package billing

import (
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodBank   PaymentMethod = "bank"   // Bank statement import
	PaymentMethodCash   PaymentMethod = "cash"   // Cash desk
	PaymentMethodManual PaymentMethod = "manual" // Manually entered by staff
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBank, PaymentMethodCash, PaymentMethodManual:
		return true
	}
	return false
}

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusActive PaymentStatus = "active"
	PaymentStatusVoided PaymentStatus = "voided" // Excluded from dedup and reconciliation
)

// Payment is a monetary event matched to a plot and allocated against the
// plot's outstanding accruals. The unallocated remainder is retained as an
// explicit credit, never silently dropped.
type Payment struct {
	shared.BaseAggregateRoot
	PlotID            uuid.UUID         `json:"plot_id"`
	PeriodID          uuid.UUID         `json:"period_id"`
	Amount            valueobject.Money `json:"amount"`
	AllocatedAmount   valueobject.Money `json:"allocated_amount"`
	UnallocatedAmount valueobject.Money `json:"unallocated_amount"`
	PaidAt            time.Time         `json:"paid_at"`
	Method            PaymentMethod     `json:"method"`
	Reference         string            `json:"reference"` // Bank dedup key, empty for manual entries
	ImportBatchID     *uuid.UUID        `json:"import_batch_id"`
	Category          ChargeType        `json:"category"`
	Status            PaymentStatus     `json:"status"`
	VoidReason        string            `json:"void_reason"`
	VoidedAt          *time.Time        `json:"voided_at"`
}

// NewPayment creates a new active payment with the full amount unallocated
func NewPayment(plotID, periodID uuid.UUID, amount valueobject.Money, paidAt time.Time, method PaymentMethod, category ChargeType, reference string) (*Payment, error) {
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLOT", "Plot ID cannot be empty")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period ID cannot be empty")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paidAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHARGE_TYPE", "Payment category is not valid")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlotID:            plotID,
		PeriodID:          periodID,
		Amount:            amount,
		AllocatedAmount:   valueobject.Zero(),
		UnallocatedAmount: amount,
		PaidAt:            paidAt,
		Method:            method,
		Reference:         reference,
		Category:          category,
		Status:            PaymentStatusActive,
	}
	p.AddDomainEvent(NewPaymentImportedEvent(p))
	return p, nil
}

// WithImportBatch tags the payment with the batch that imported it
func (p *Payment) WithImportBatch(batchID uuid.UUID) *Payment {
	p.ImportBatchID = &batchID
	return p
}

// Allocate moves an amount from the unallocated remainder to the allocated
// total. The caller applies the same amount to an accrual line.
func (p *Payment) Allocate(amount valueobject.Money) error {
	if p.Status != PaymentStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Cannot allocate a voided payment")
	}
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.GreaterThan(p.UnallocatedAmount) {
		return shared.NewDomainError("EXCEEDS_UNALLOCATED",
			fmt.Sprintf("Allocation %s exceeds unallocated remainder %s",
				amount.StringFixed(2), p.UnallocatedAmount.StringFixed(2)))
	}

	p.AllocatedAmount = p.AllocatedAmount.Add(amount)
	p.UnallocatedAmount = p.Amount.Subtract(p.AllocatedAmount)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Void excludes the payment from dedup and reconciliation
func (p *Payment) Void(reason string) error {
	if p.Status == PaymentStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Payment is already voided")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusVoided
	p.VoidReason = reason
	p.VoidedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// IsVoided reports whether the payment has been voided
func (p *Payment) IsVoided() bool {
	return p.Status == PaymentStatusVoided
}

// HasCredit reports whether part of the payment remains unallocated
func (p *Payment) HasCredit() bool {
	return p.Status == PaymentStatusActive && p.UnallocatedAmount.IsPositive()
}

// SkipReason explains why an imported payment row was not created
type SkipReason string

const (
	SkipReasonDuplicate SkipReason = "DUPLICATE"
	SkipReasonInvalid   SkipReason = "INVALID"
	SkipReasonNotFound  SkipReason = "NOT_FOUND"
)

// PaymentImportBatch aggregates the outcome of one bulk import. Rows are
// processed independently; the batch reports partial success, it never
// rolls back created rows.
type PaymentImportBatch struct {
	shared.BaseEntity
	Source       string             `json:"source"` // e.g. "bank_csv", "manual"
	FileName     string             `json:"file_name"`
	TotalRows    int                `json:"total_rows"`
	CreatedCount int                `json:"created_count"`
	SkippedCount int                `json:"skipped_count"`
	SkipReasons  map[SkipReason]int `json:"skip_reasons"`
	CreatedBy    uuid.UUID          `json:"created_by"`
}

// NewPaymentImportBatch creates an empty import batch record
func NewPaymentImportBatch(source, fileName string, createdBy uuid.UUID) *PaymentImportBatch {
	return &PaymentImportBatch{
		BaseEntity:  shared.NewBaseEntity(),
		Source:      source,
		FileName:    fileName,
		SkipReasons: make(map[SkipReason]int),
		CreatedBy:   createdBy,
	}
}

// RecordCreated counts a successfully created payment row
func (b *PaymentImportBatch) RecordCreated() {
	b.TotalRows++
	b.CreatedCount++
}

// RecordSkipped counts a skipped row under the given reason
func (b *PaymentImportBatch) RecordSkipped(reason SkipReason) {
	b.TotalRows++
	b.SkippedCount++
	b.SkipReasons[reason]++
}
