package billing

import (
	"context"
	"testing"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	svc         *PaymentImportService
	periodRepo  *MockPeriodRepository
	accrualRepo *MockAccrualRepository
	plotRepo    *MockPlotRepository
	paymentRepo *MockPaymentRepository
	batchRepo   *MockBatchRepository
}

func newImportFixture() *importFixture {
	f := &importFixture{
		periodRepo:  new(MockPeriodRepository),
		accrualRepo: new(MockAccrualRepository),
		plotRepo:    new(MockPlotRepository),
		paymentRepo: new(MockPaymentRepository),
		batchRepo:   new(MockBatchRepository),
	}
	scope := newTestScope(f.periodRepo, f.accrualRepo, f.paymentRepo, f.batchRepo)
	locker := lock.NewInMemoryPeriodLocker()
	periodSvc := NewPeriodService(scope, f.periodRepo, locker, shared.NopEventPublisher{}, shared.NopAuditRecorder{})
	f.svc = NewPaymentImportService(scope, periodSvc, f.plotRepo, f.paymentRepo, locker, shared.NopEventPublisher{}, shared.NopAuditRecorder{})
	return f
}

func TestPaymentImportService_ImportPayments(t *testing.T) {
	ctx := context.Background()
	meta := ImportMeta{Source: "bank_csv", FileName: "july.csv", ActorID: uuid.New()}

	plot := activePlot("12", 0)
	period, err := billing.NewMonthlyPeriod(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
	require.NoError(t, err)

	validRow := PaymentImportRow{
		PlotNumber: "12",
		Amount:     "1500.00",
		PaidAt:     "2025-07-10",
		Method:     "bank",
		Category:   "membership",
		Reference:  "TX-001",
	}

	t.Run("accepted row is created and allocated oldest first", func(t *testing.T) {
		f := newImportFixture()
		old := testOpenAccrual(t, period.ID, plot.ID, 1000)
		recent := testOpenAccrual(t, period.ID, plot.ID, 1000)

		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindByReference", mock.Anything, "TX-001").Return(nil, nil)
		f.periodRepo.On("FindByDateAndCategory", mock.Anything, mock.Anything, billing.PeriodCategoryGeneral).Return(period, nil)
		f.accrualRepo.On("FindOpenByPlot", mock.Anything, plot.ID, billing.ChargeTypeMembership).Return([]*billing.PeriodAccrual{old, recent}, nil)
		f.periodRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*billing.BillingPeriod{period}, nil)
		f.accrualRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.AllocatedAmount.StringFixed(2) == "1500.00" && p.UnallocatedAmount.IsZero()
		})).Return(nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{validRow}, meta)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.TotalRows)
		assert.Equal(t, 1, summary.Created)
		assert.Zero(t, summary.Skipped)
		assert.True(t, old.IsSettled())
		assert.Equal(t, "500.00", recent.Outstanding().StringFixed(2))
	})

	t.Run("payment held as credit when its period is locked", func(t *testing.T) {
		f := newImportFixture()
		lockedPeriod, err := billing.NewMonthlyPeriod(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
		require.NoError(t, err)
		require.NoError(t, lockedPeriod.Lock(uuid.New()))
		frozen := testOpenAccrual(t, lockedPeriod.ID, plot.ID, 1000)

		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindByReference", mock.Anything, "TX-001").Return(nil, nil)
		f.periodRepo.On("FindByDateAndCategory", mock.Anything, mock.Anything, billing.PeriodCategoryGeneral).Return(lockedPeriod, nil)
		f.accrualRepo.On("FindOpenByPlot", mock.Anything, plot.ID, billing.ChargeTypeMembership).Return([]*billing.PeriodAccrual{frozen}, nil)
		f.periodRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*billing.BillingPeriod{lockedPeriod}, nil)
		f.paymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.AllocatedAmount.IsZero() && p.UnallocatedAmount.StringFixed(2) == "1500.00"
		})).Return(nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{validRow}, meta)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Created)
		// the frozen ledger line is never written
		assert.True(t, frozen.AmountPaid.IsZero())
		f.accrualRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("allocation skips the locked period and fills the open one", func(t *testing.T) {
		f := newImportFixture()
		lockedPeriod, err := billing.NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
		require.NoError(t, err)
		require.NoError(t, lockedPeriod.Lock(uuid.New()))
		frozen := testOpenAccrual(t, lockedPeriod.ID, plot.ID, 1000)
		open := testOpenAccrual(t, period.ID, plot.ID, 1000)

		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindByReference", mock.Anything, "TX-001").Return(nil, nil)
		f.periodRepo.On("FindByDateAndCategory", mock.Anything, mock.Anything, billing.PeriodCategoryGeneral).Return(period, nil)
		f.accrualRepo.On("FindOpenByPlot", mock.Anything, plot.ID, billing.ChargeTypeMembership).Return([]*billing.PeriodAccrual{frozen, open}, nil)
		f.periodRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]*billing.BillingPeriod{lockedPeriod, period}, nil)
		f.accrualRepo.On("Save", mock.Anything, open).Return(nil)
		f.paymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.AllocatedAmount.StringFixed(2) == "1000.00" && p.UnallocatedAmount.StringFixed(2) == "500.00"
		})).Return(nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{validRow}, meta)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Created)
		assert.True(t, frozen.AmountPaid.IsZero())
		assert.True(t, open.IsSettled())
		f.accrualRepo.AssertNotCalled(t, "Save", mock.Anything, frozen)
	})

	t.Run("duplicate reference is skipped", func(t *testing.T) {
		f := newImportFixture()
		prior, err := billing.NewPayment(plot.ID, period.ID, valueobject.NewMoneyFromFloat(1500),
			time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), billing.PaymentMethodBank, billing.ChargeTypeMembership, "TX-001")
		require.NoError(t, err)

		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindByReference", mock.Anything, "TX-001").Return(prior, nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{validRow}, meta)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 1, summary.SkipReasons[billing.SkipReasonDuplicate])
	})

	t.Run("manual row without reference dedups by plot amount method day", func(t *testing.T) {
		f := newImportFixture()
		manualRow := validRow
		manualRow.Reference = ""
		manualRow.Method = "cash"
		prior, err := billing.NewPayment(plot.ID, period.ID, valueobject.NewMoneyFromFloat(1500),
			time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), billing.PaymentMethodCash, billing.ChargeTypeMembership, "")
		require.NoError(t, err)

		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindSimilar", mock.Anything, plot.ID, "1500.00", billing.PaymentMethodCash, mock.Anything).Return(prior, nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{manualRow}, meta)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SkipReasons[billing.SkipReasonDuplicate])
	})

	t.Run("unknown plot is skipped as not found", func(t *testing.T) {
		f := newImportFixture()
		f.plotRepo.On("FindByNumber", mock.Anything, "999").Return(nil, nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		row := validRow
		row.PlotNumber = "999"
		summary, err := f.svc.ImportPayments(ctx, []PaymentImportRow{row}, meta)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SkipReasons[billing.SkipReasonNotFound])
	})

	t.Run("bad rows are counted as invalid", func(t *testing.T) {
		f := newImportFixture()
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		rows := []PaymentImportRow{
			{PlotNumber: "12", Amount: "not-a-number", PaidAt: "2025-07-10", Method: "bank", Category: "membership"},
			{PlotNumber: "12", Amount: "100", PaidAt: "2025-07-10", Method: "wire", Category: "membership"},
			{PlotNumber: "", Amount: "100", PaidAt: "2025-07-10", Method: "bank", Category: "membership"},
		}
		summary, err := f.svc.ImportPayments(ctx, rows, meta)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalRows)
		assert.Zero(t, summary.Created)
		assert.Equal(t, 3, summary.SkipReasons[billing.SkipReasonInvalid])
		assert.Len(t, summary.Errors, 3)
	})

	t.Run("one bad row does not block the others", func(t *testing.T) {
		f := newImportFixture()
		f.plotRepo.On("FindByNumber", mock.Anything, "12").Return(plot, nil)
		f.paymentRepo.On("FindByReference", mock.Anything, "TX-001").Return(nil, nil)
		f.periodRepo.On("FindByDateAndCategory", mock.Anything, mock.Anything, billing.PeriodCategoryGeneral).Return(period, nil)
		f.accrualRepo.On("FindOpenByPlot", mock.Anything, plot.ID, billing.ChargeTypeMembership).Return([]*billing.PeriodAccrual{}, nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		rows := []PaymentImportRow{
			{PlotNumber: "12", Amount: "bad", PaidAt: "2025-07-10", Method: "bank", Category: "membership"},
			validRow,
		}
		summary, err := f.svc.ImportPayments(ctx, rows, meta)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Created)
		assert.Equal(t, 1, summary.Skipped)
		// totals always reconcile
		assert.Equal(t, summary.TotalRows, summary.Created+summary.Skipped)
	})

	t.Run("empty import is rejected", func(t *testing.T) {
		f := newImportFixture()
		_, err := f.svc.ImportPayments(ctx, nil, meta)
		assert.Error(t, err)
	})
}

func testOpenAccrual(t *testing.T, periodID, plotID uuid.UUID, accrued float64) *billing.PeriodAccrual {
	t.Helper()
	a, err := billing.NewPeriodAccrual(periodID, plotID, billing.ChargeTypeMembership,
		valueobject.NewMoneyFromFloat(accrued), false, billing.AccrualNoteNone)
	require.NoError(t, err)
	return a
}
