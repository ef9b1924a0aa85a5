package billing

import (
	"context"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TariffRepository provides access to tariffs
type TariffRepository interface {
	Save(ctx context.Context, tariff *Tariff) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tariff, error)
	FindActiveAt(ctx context.Context, date time.Time) ([]*Tariff, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Tariff], error)
}

// TariffOverrideRepository provides access to per-plot overrides
type TariffOverrideRepository interface {
	Save(ctx context.Context, override *TariffOverride) error
	FindByID(ctx context.Context, id uuid.UUID) (*TariffOverride, error)
	FindByTariff(ctx context.Context, tariffID uuid.UUID) ([]*TariffOverride, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlotRepository provides read access to the plot registry projection
type PlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plot, error)
	FindByNumber(ctx context.Context, number string) (*Plot, error)
	FindActive(ctx context.Context) ([]*Plot, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Plot], error)
}

// BillingPeriodRepository provides access to billing periods
type BillingPeriodRepository interface {
	Save(ctx context.Context, period *BillingPeriod) error
	SaveWithLock(ctx context.Context, period *BillingPeriod) error
	FindByID(ctx context.Context, id uuid.UUID) (*BillingPeriod, error)
	FindByDateAndCategory(ctx context.Context, date time.Time, category PeriodCategory) (*BillingPeriod, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*BillingPeriod, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*BillingPeriod], error)
}

// PeriodAccrualRepository provides access to the accrual ledger
type PeriodAccrualRepository interface {
	Save(ctx context.Context, accrual *PeriodAccrual) error
	SaveAll(ctx context.Context, accruals []*PeriodAccrual) error
	FindByID(ctx context.Context, id uuid.UUID) (*PeriodAccrual, error)
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]*PeriodAccrual, error)
	FindByPeriodPlotType(ctx context.Context, periodID, plotID uuid.UUID, chargeType ChargeType) (*PeriodAccrual, error)
	FindOpenByPlot(ctx context.Context, plotID uuid.UUID, chargeType ChargeType) ([]*PeriodAccrual, error)
	FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*PeriodAccrual, error)
}

// PaymentRepository provides access to payments
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, reference string) (*Payment, error)
	FindSimilar(ctx context.Context, plotID uuid.UUID, amount string, method PaymentMethod, day time.Time) (*Payment, error)
	FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*Payment, error)
	FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*Payment, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Payment], error)
}

// PaymentImportBatchRepository provides access to import batch records
type PaymentImportBatchRepository interface {
	Save(ctx context.Context, batch *PaymentImportBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentImportBatch, error)
}

// RepaymentPlanRepository provides access to debt repayment plans
type RepaymentPlanRepository interface {
	Save(ctx context.Context, plan *DebtRepaymentPlan) error
	SaveWithLock(ctx context.Context, plan *DebtRepaymentPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*DebtRepaymentPlan, error)
	FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*DebtRepaymentPlan, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*DebtRepaymentPlan], error)
}
