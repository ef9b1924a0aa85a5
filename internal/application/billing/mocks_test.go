package billing

import (
	"context"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories shared by the service tests
// =============================================================================

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) Save(ctx context.Context, period *billing.BillingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) SaveWithLock(ctx context.Context, period *billing.BillingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindByDateAndCategory(ctx context.Context, date time.Time, category billing.PeriodCategory) (*billing.BillingPeriod, error) {
	args := m.Called(ctx, date, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.BillingPeriod, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.BillingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.BillingPeriod], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.BillingPeriod]), args.Error(1)
}

type MockAccrualRepository struct {
	mock.Mock
}

func (m *MockAccrualRepository) Save(ctx context.Context, accrual *billing.PeriodAccrual) error {
	args := m.Called(ctx, accrual)
	return args.Error(0)
}

func (m *MockAccrualRepository) SaveAll(ctx context.Context, accruals []*billing.PeriodAccrual) error {
	args := m.Called(ctx, accruals)
	return args.Error(0)
}

func (m *MockAccrualRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PeriodAccrual, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PeriodAccrual), args.Error(1)
}

func (m *MockAccrualRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]*billing.PeriodAccrual, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.PeriodAccrual), args.Error(1)
}

func (m *MockAccrualRepository) FindByPeriodPlotType(ctx context.Context, periodID, plotID uuid.UUID, chargeType billing.ChargeType) (*billing.PeriodAccrual, error) {
	args := m.Called(ctx, periodID, plotID, chargeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PeriodAccrual), args.Error(1)
}

func (m *MockAccrualRepository) FindOpenByPlot(ctx context.Context, plotID uuid.UUID, chargeType billing.ChargeType) ([]*billing.PeriodAccrual, error) {
	args := m.Called(ctx, plotID, chargeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.PeriodAccrual), args.Error(1)
}

func (m *MockAccrualRepository) FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*billing.PeriodAccrual, error) {
	args := m.Called(ctx, plotIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.PeriodAccrual), args.Error(1)
}

type MockPlotRepository struct {
	mock.Mock
}

func (m *MockPlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Plot), args.Error(1)
}

func (m *MockPlotRepository) FindByNumber(ctx context.Context, number string) (*billing.Plot, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Plot), args.Error(1)
}

func (m *MockPlotRepository) FindActive(ctx context.Context) ([]*billing.Plot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Plot), args.Error(1)
}

func (m *MockPlotRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Plot], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Plot]), args.Error(1)
}

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) Save(ctx context.Context, tariff *billing.Tariff) error {
	args := m.Called(ctx, tariff)
	return args.Error(0)
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tariff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindActiveAt(ctx context.Context, date time.Time) ([]*billing.Tariff, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Tariff], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Tariff]), args.Error(1)
}

type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) Save(ctx context.Context, override *billing.TariffOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockOverrideRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TariffOverride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TariffOverride), args.Error(1)
}

func (m *MockOverrideRepository) FindByTariff(ctx context.Context, tariffID uuid.UUID) ([]*billing.TariffOverride, error) {
	args := m.Called(ctx, tariffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.TariffOverride), args.Error(1)
}

func (m *MockOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindSimilar(ctx context.Context, plotID uuid.UUID, amount string, method billing.PaymentMethod, day time.Time) (*billing.Payment, error) {
	args := m.Called(ctx, plotID, amount, method, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*billing.Payment, error) {
	args := m.Called(ctx, plotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*billing.Payment, error) {
	args := m.Called(ctx, plotIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Payment], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.Payment]), args.Error(1)
}

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *billing.PaymentImportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentImportBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentImportBatch), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *billing.DebtRepaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) SaveWithLock(ctx context.Context, plan *billing.DebtRepaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.DebtRepaymentPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.DebtRepaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*billing.DebtRepaymentPlan, error) {
	args := m.Called(ctx, plotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.DebtRepaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.DebtRepaymentPlan], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*billing.DebtRepaymentPlan]), args.Error(1)
}

// newTestScope wires a NoOpTransactionScope over the given mocks
func newTestScope(periodRepo *MockPeriodRepository, accrualRepo *MockAccrualRepository, paymentRepo *MockPaymentRepository, batchRepo *MockBatchRepository) TransactionScope {
	return NewNoOpTransactionScope(periodRepo, accrualRepo, paymentRepo, batchRepo)
}
