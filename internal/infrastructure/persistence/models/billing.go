package models

import (
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TariffModel is the persistence model for the Tariff aggregate root
type TariffModel struct {
	AggregateModel
	Name       string               `gorm:"type:varchar(200);not null"`
	Type       billing.TariffType   `gorm:"type:varchar(20);not null;index"`
	Unit       billing.TariffUnit   `gorm:"type:varchar(10);not null"`
	Amount     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	ActiveFrom time.Time            `gorm:"not null;index"`
	ActiveTo   *time.Time           `gorm:"index"`
	Status     billing.TariffStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
}

// TableName returns the table name for GORM
func (TariffModel) TableName() string {
	return "tariffs"
}

// ToDomain converts the persistence model to a domain Tariff
func (m *TariffModel) ToDomain() *billing.Tariff {
	return &billing.Tariff{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Name:       m.Name,
		Type:       m.Type,
		Unit:       m.Unit,
		Amount:     valueobject.NewMoney(m.Amount),
		ActiveFrom: m.ActiveFrom,
		ActiveTo:   m.ActiveTo,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain Tariff
func (m *TariffModel) FromDomain(t *billing.Tariff) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Type = t.Type
	m.Unit = t.Unit
	m.Amount = t.Amount.Amount()
	m.ActiveFrom = t.ActiveFrom
	m.ActiveTo = t.ActiveTo
	m.Status = t.Status
}

// TariffModelFromDomain creates a persistence model from a domain Tariff
func TariffModelFromDomain(t *billing.Tariff) *TariffModel {
	m := &TariffModel{}
	m.FromDomain(t)
	return m
}

// TariffOverrideModel is the persistence model for per-plot tariff overrides
type TariffOverrideModel struct {
	BaseModel
	TariffID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_override_tariff_plot,priority:1"`
	PlotID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_override_tariff_plot,priority:2"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Comment   string          `gorm:"type:varchar(500)"`
	CreatedBy uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (TariffOverrideModel) TableName() string {
	return "tariff_overrides"
}

// ToDomain converts the persistence model to a domain TariffOverride
func (m *TariffOverrideModel) ToDomain() *billing.TariffOverride {
	return &billing.TariffOverride{
		BaseEntity: m.BaseModel.ToDomain(),
		TariffID:   m.TariffID,
		PlotID:     m.PlotID,
		Amount:     valueobject.NewMoney(m.Amount),
		Comment:    m.Comment,
		CreatedBy:  m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain TariffOverride
func (m *TariffOverrideModel) FromDomain(o *billing.TariffOverride) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.TariffID = o.TariffID
	m.PlotID = o.PlotID
	m.Amount = o.Amount.Amount()
	m.Comment = o.Comment
	m.CreatedBy = o.CreatedBy
}

// PlotModel is the read-only projection of the plot registry
type PlotModel struct {
	BaseModel
	Number string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	Area   *decimal.Decimal   `gorm:"type:decimal(12,2)"`
	Status billing.PlotStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (PlotModel) TableName() string {
	return "plots"
}

// ToDomain converts the persistence model to a domain Plot
func (m *PlotModel) ToDomain() *billing.Plot {
	return &billing.Plot{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		Area:       m.Area,
		Status:     m.Status,
	}
}

// BillingPeriodModel is the persistence model for the BillingPeriod aggregate root
type BillingPeriodModel struct {
	AggregateModel
	DateFrom  time.Time              `gorm:"not null;uniqueIndex:idx_period_month_category,priority:1"`
	DateTo    time.Time              `gorm:"not null"`
	Category  billing.PeriodCategory `gorm:"type:varchar(20);not null;uniqueIndex:idx_period_month_category,priority:2"`
	Status    billing.PeriodStatus   `gorm:"type:varchar(10);not null;default:'draft';index"`
	UpdatedBy *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BillingPeriodModel) TableName() string {
	return "billing_periods"
}

// ToDomain converts the persistence model to a domain BillingPeriod
func (m *BillingPeriodModel) ToDomain() *billing.BillingPeriod {
	return &billing.BillingPeriod{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		DateFrom:  m.DateFrom,
		DateTo:    m.DateTo,
		Category:  m.Category,
		Status:    m.Status,
		UpdatedBy: m.UpdatedBy,
	}
}

// FromDomain populates the persistence model from a domain BillingPeriod
func (m *BillingPeriodModel) FromDomain(p *billing.BillingPeriod) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.DateFrom = p.DateFrom
	m.DateTo = p.DateTo
	m.Category = p.Category
	m.Status = p.Status
	m.UpdatedBy = p.UpdatedBy
}

// BillingPeriodModelFromDomain creates a persistence model from a domain BillingPeriod
func BillingPeriodModelFromDomain(p *billing.BillingPeriod) *BillingPeriodModel {
	m := &BillingPeriodModel{}
	m.FromDomain(p)
	return m
}

// PeriodAccrualModel is the persistence model for accrual ledger lines.
// The unique index on (period, plot, type) is the upsert key of generation.
type PeriodAccrualModel struct {
	AggregateModel
	PeriodID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_accrual_period_plot_type,priority:1"`
	PlotID          uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_accrual_period_plot_type,priority:2;index"`
	Type            billing.ChargeType  `gorm:"type:varchar(20);not null;uniqueIndex:idx_accrual_period_plot_type,priority:3"`
	AmountAccrued   decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	AmountPaid      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	OverrideApplied bool                `gorm:"not null;default:false"`
	Note            billing.AccrualNote `gorm:"type:varchar(20);not null;default:''"`
}

// TableName returns the table name for GORM
func (PeriodAccrualModel) TableName() string {
	return "period_accruals"
}

// ToDomain converts the persistence model to a domain PeriodAccrual
func (m *PeriodAccrualModel) ToDomain() *billing.PeriodAccrual {
	return &billing.PeriodAccrual{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PeriodID:        m.PeriodID,
		PlotID:          m.PlotID,
		Type:            m.Type,
		AmountAccrued:   valueobject.NewMoney(m.AmountAccrued),
		AmountPaid:      valueobject.NewMoney(m.AmountPaid),
		OverrideApplied: m.OverrideApplied,
		Note:            m.Note,
	}
}

// FromDomain populates the persistence model from a domain PeriodAccrual
func (m *PeriodAccrualModel) FromDomain(a *billing.PeriodAccrual) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.PeriodID = a.PeriodID
	m.PlotID = a.PlotID
	m.Type = a.Type
	m.AmountAccrued = a.AmountAccrued.Amount()
	m.AmountPaid = a.AmountPaid.Amount()
	m.OverrideApplied = a.OverrideApplied
	m.Note = a.Note
}

// PeriodAccrualModelFromDomain creates a persistence model from a domain PeriodAccrual
func PeriodAccrualModelFromDomain(a *billing.PeriodAccrual) *PeriodAccrualModel {
	m := &PeriodAccrualModel{}
	m.FromDomain(a)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Reference carries a partial unique index so empty manual references do
// not collide.
type PaymentModel struct {
	AggregateModel
	PlotID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	PeriodID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	AllocatedAmount   decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	UnallocatedAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAt            time.Time             `gorm:"not null;index"`
	Method            billing.PaymentMethod `gorm:"type:varchar(10);not null"`
	Reference         string                `gorm:"type:varchar(128);index"`
	ImportBatchID     *uuid.UUID            `gorm:"type:uuid;index"`
	Category          billing.ChargeType    `gorm:"type:varchar(20);not null"`
	Status            billing.PaymentStatus `gorm:"type:varchar(10);not null;default:'active';index"`
	VoidReason        string                `gorm:"type:varchar(500)"`
	VoidedAt          *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PlotID:            m.PlotID,
		PeriodID:          m.PeriodID,
		Amount:            valueobject.NewMoney(m.Amount),
		AllocatedAmount:   valueobject.NewMoney(m.AllocatedAmount),
		UnallocatedAmount: valueobject.NewMoney(m.UnallocatedAmount),
		PaidAt:            m.PaidAt,
		Method:            m.Method,
		Reference:         m.Reference,
		ImportBatchID:     m.ImportBatchID,
		Category:          m.Category,
		Status:            m.Status,
		VoidReason:        m.VoidReason,
		VoidedAt:          m.VoidedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PlotID = p.PlotID
	m.PeriodID = p.PeriodID
	m.Amount = p.Amount.Amount()
	m.AllocatedAmount = p.AllocatedAmount.Amount()
	m.UnallocatedAmount = p.UnallocatedAmount.Amount()
	m.PaidAt = p.PaidAt
	m.Method = p.Method
	m.Reference = p.Reference
	m.ImportBatchID = p.ImportBatchID
	m.Category = p.Category
	m.Status = p.Status
	m.VoidReason = p.VoidReason
	m.VoidedAt = p.VoidedAt
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentImportBatchModel is the persistence model for import batch records
type PaymentImportBatchModel struct {
	BaseModel
	Source       string                     `gorm:"type:varchar(50);not null"`
	FileName     string                     `gorm:"type:varchar(255)"`
	TotalRows    int                        `gorm:"not null"`
	CreatedCount int                        `gorm:"not null"`
	SkippedCount int                        `gorm:"not null"`
	SkipReasons  map[billing.SkipReason]int `gorm:"type:jsonb;serializer:json"`
	CreatedBy    uuid.UUID                  `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (PaymentImportBatchModel) TableName() string {
	return "payment_import_batches"
}

// ToDomain converts the persistence model to a domain PaymentImportBatch
func (m *PaymentImportBatchModel) ToDomain() *billing.PaymentImportBatch {
	reasons := m.SkipReasons
	if reasons == nil {
		reasons = make(map[billing.SkipReason]int)
	}
	return &billing.PaymentImportBatch{
		BaseEntity:   m.BaseModel.ToDomain(),
		Source:       m.Source,
		FileName:     m.FileName,
		TotalRows:    m.TotalRows,
		CreatedCount: m.CreatedCount,
		SkippedCount: m.SkippedCount,
		SkipReasons:  reasons,
		CreatedBy:    m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain PaymentImportBatch
func (m *PaymentImportBatchModel) FromDomain(b *billing.PaymentImportBatch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.Source = b.Source
	m.FileName = b.FileName
	m.TotalRows = b.TotalRows
	m.CreatedCount = b.CreatedCount
	m.SkippedCount = b.SkippedCount
	m.SkipReasons = b.SkipReasons
	m.CreatedBy = b.CreatedBy
}

// RepaymentPlanModel is the persistence model for debt repayment plans
type RepaymentPlanModel struct {
	AggregateModel
	PlotID    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PeriodID  *uuid.UUID                  `gorm:"type:uuid;index"`
	TotalDebt decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	Deadline  time.Time                   `gorm:"not null;index"`
	Status    billing.RepaymentPlanStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Comment   string                      `gorm:"type:varchar(1000)"`
	CreatedBy uuid.UUID                   `gorm:"type:uuid;not null"`
	UpdatedBy *uuid.UUID                  `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (RepaymentPlanModel) TableName() string {
	return "repayment_plans"
}

// ToDomain converts the persistence model to a domain DebtRepaymentPlan
func (m *RepaymentPlanModel) ToDomain() *billing.DebtRepaymentPlan {
	return &billing.DebtRepaymentPlan{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PlotID:    m.PlotID,
		PeriodID:  m.PeriodID,
		TotalDebt: valueobject.NewMoney(m.TotalDebt),
		Deadline:  m.Deadline,
		Status:    m.Status,
		Comment:   m.Comment,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
	}
}

// FromDomain populates the persistence model from a domain DebtRepaymentPlan
func (m *RepaymentPlanModel) FromDomain(p *billing.DebtRepaymentPlan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PlotID = p.PlotID
	m.PeriodID = p.PeriodID
	m.TotalDebt = p.TotalDebt.Amount()
	m.Deadline = p.Deadline
	m.Status = p.Status
	m.Comment = p.Comment
	m.CreatedBy = p.CreatedBy
	m.UpdatedBy = p.UpdatedBy
}

// RepaymentPlanModelFromDomain creates a persistence model from a domain DebtRepaymentPlan
func RepaymentPlanModelFromDomain(p *billing.DebtRepaymentPlan) *RepaymentPlanModel {
	m := &RepaymentPlanModel{}
	m.FromDomain(p)
	return m
}

// AllModels returns every model for migration registration
func AllModels() []any {
	return []any{
		&TariffModel{},
		&TariffOverrideModel{},
		&PlotModel{},
		&BillingPeriodModel{},
		&PeriodAccrualModel{},
		&PaymentModel{},
		&PaymentImportBatchModel{},
		&RepaymentPlanModel{},
	}
}
