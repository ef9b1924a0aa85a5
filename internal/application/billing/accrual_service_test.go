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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type accrualServiceFixture struct {
	svc          *AccrualService
	periodRepo   *MockPeriodRepository
	accrualRepo  *MockAccrualRepository
	plotRepo     *MockPlotRepository
	tariffRepo   *MockTariffRepository
	overrideRepo *MockOverrideRepository
}

func newAccrualServiceFixture() *accrualServiceFixture {
	f := &accrualServiceFixture{
		periodRepo:   new(MockPeriodRepository),
		accrualRepo:  new(MockAccrualRepository),
		plotRepo:     new(MockPlotRepository),
		tariffRepo:   new(MockTariffRepository),
		overrideRepo: new(MockOverrideRepository),
	}
	paymentRepo := new(MockPaymentRepository)
	batchRepo := new(MockBatchRepository)
	f.svc = NewAccrualService(
		newTestScope(f.periodRepo, f.accrualRepo, paymentRepo, batchRepo),
		f.periodRepo,
		f.accrualRepo,
		f.plotRepo,
		f.tariffRepo,
		f.overrideRepo,
		lock.NewInMemoryPeriodLocker(),
		shared.NopEventPublisher{},
		shared.NopAuditRecorder{},
	)
	return f
}

func draftPeriod(t *testing.T) *billing.BillingPeriod {
	t.Helper()
	p, err := billing.NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
	require.NoError(t, err)
	return p
}

func activePlot(number string, area float64) *billing.Plot {
	p := &billing.Plot{Number: number, Status: billing.PlotStatusActive}
	p.ID = uuid.New()
	if area > 0 {
		a := decimal.NewFromFloat(area)
		p.Area = &a
	}
	return p
}

func memberTariff(t *testing.T, amount float64) *billing.Tariff {
	t.Helper()
	tariff, err := billing.NewTariff("membership 2025", billing.TariffTypeMember, billing.TariffUnitPlot,
		valueobject.NewMoneyFromFloat(amount), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	tariff.Status = billing.TariffStatusActive
	return tariff
}

func targetTariff(t *testing.T, amount float64) *billing.Tariff {
	t.Helper()
	tariff, err := billing.NewTariff("road fund", billing.TariffTypeTarget, billing.TariffUnitPlot,
		valueobject.NewMoneyFromFloat(amount), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	tariff.Status = billing.TariffStatusActive
	return tariff
}

func TestAccrualService_Generate(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("creates lines for every plot and type", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)
		plots := []*billing.Plot{activePlot("1", 0), activePlot("2", 0)}
		member, target := memberTariff(t, 1500), targetTariff(t, 500)

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return(plots, nil)
		f.tariffRepo.On("FindActiveAt", mock.Anything, mock.Anything).Return([]*billing.Tariff{member, target}, nil)
		f.overrideRepo.On("FindByTariff", mock.Anything, member.ID).Return([]*billing.TariffOverride{}, nil)
		f.overrideRepo.On("FindByTariff", mock.Anything, target.ID).Return([]*billing.TariffOverride{}, nil)
		f.accrualRepo.On("FindByPeriod", mock.Anything, period.ID).Return([]*billing.PeriodAccrual{}, nil)
		f.accrualRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)

		result, err := f.svc.Generate(ctx, period.ID, GenerateOptions{}, actor)
		require.NoError(t, err)

		assert.Equal(t, 2, result.PlotCount)
		assert.Equal(t, 4, result.Generated) // 2 plots x 2 charge types
		assert.Zero(t, result.Updated)
		f.accrualRepo.AssertCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("existing rows without force conflict", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)
		plot := activePlot("1", 0)
		member, target := memberTariff(t, 1500), targetTariff(t, 500)
		existing, err := billing.NewPeriodAccrual(period.ID, plot.ID, billing.ChargeTypeMembership,
			valueobject.NewMoneyFromFloat(1500), false, billing.AccrualNoteNone)
		require.NoError(t, err)

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return([]*billing.Plot{plot}, nil)
		f.tariffRepo.On("FindActiveAt", mock.Anything, mock.Anything).Return([]*billing.Tariff{member, target}, nil)
		f.overrideRepo.On("FindByTariff", mock.Anything, mock.Anything).Return([]*billing.TariffOverride{}, nil)
		f.accrualRepo.On("FindByPeriod", mock.Anything, period.ID).Return([]*billing.PeriodAccrual{existing}, nil)

		_, err = f.svc.Generate(ctx, period.ID, GenerateOptions{}, actor)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCRUALS_EXIST", domainErr.Code)
	})

	t.Run("force recomputes and keeps payments", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)
		plot := activePlot("1", 0)
		member, target := memberTariff(t, 1800), targetTariff(t, 500)
		existing, err := billing.NewPeriodAccrual(period.ID, plot.ID, billing.ChargeTypeMembership,
			valueobject.NewMoneyFromFloat(1500), false, billing.AccrualNoteNone)
		require.NoError(t, err)
		require.NoError(t, existing.ApplyPayment(valueobject.NewMoneyFromFloat(1000)))

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return([]*billing.Plot{plot}, nil)
		f.tariffRepo.On("FindActiveAt", mock.Anything, mock.Anything).Return([]*billing.Tariff{member, target}, nil)
		f.overrideRepo.On("FindByTariff", mock.Anything, mock.Anything).Return([]*billing.TariffOverride{}, nil)
		f.accrualRepo.On("FindByPeriod", mock.Anything, period.ID).Return([]*billing.PeriodAccrual{existing}, nil)
		f.accrualRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)

		result, err := f.svc.Generate(ctx, period.ID, GenerateOptions{Force: true}, actor)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 1, result.Generated) // the target line did not exist yet
		assert.Equal(t, "1800.00", existing.AmountAccrued.StringFixed(2))
		assert.Equal(t, "1000.00", existing.AmountPaid.StringFixed(2))
	})

	t.Run("locked period conflicts", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)
		require.NoError(t, period.Lock(actor))

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)

		_, err := f.svc.Generate(ctx, period.ID, GenerateOptions{}, actor)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PERIOD_LOCKED", domainErr.Code)
	})

	t.Run("empty plot registry is a validation error", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return([]*billing.Plot{}, nil)

		_, err := f.svc.Generate(ctx, period.ID, GenerateOptions{}, actor)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_PLOT_REGISTRY", domainErr.Code)
	})

	t.Run("no active tariff is a validation error", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return([]*billing.Plot{activePlot("1", 0)}, nil)
		f.tariffRepo.On("FindActiveAt", mock.Anything, mock.Anything).Return([]*billing.Tariff{}, nil)

		_, err := f.svc.Generate(ctx, period.ID, GenerateOptions{Types: []billing.ChargeType{billing.ChargeTypeMembership}}, actor)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ACTIVE_TARIFF", domainErr.Code)
	})

	t.Run("electric type is rejected for generation", func(t *testing.T) {
		f := newAccrualServiceFixture()

		_, err := f.svc.Generate(ctx, uuid.New(), GenerateOptions{Types: []billing.ChargeType{billing.ChargeTypeElectric}}, actor)
		require.Error(t, err)
	})

	t.Run("area tariff without survey data flags needs review", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period := draftPeriod(t)
		plot := activePlot("1", 0) // no area
		areaTariff, err := billing.NewTariff("membership by area", billing.TariffTypeMember, billing.TariffUnitArea,
			valueobject.NewMoneyFromFloat(100), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
		areaTariff.Status = billing.TariffStatusActive

		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.plotRepo.On("FindActive", mock.Anything).Return([]*billing.Plot{plot}, nil)
		f.tariffRepo.On("FindActiveAt", mock.Anything, mock.Anything).Return([]*billing.Tariff{areaTariff}, nil)
		f.overrideRepo.On("FindByTariff", mock.Anything, areaTariff.ID).Return([]*billing.TariffOverride{}, nil)
		f.accrualRepo.On("FindByPeriod", mock.Anything, period.ID).Return([]*billing.PeriodAccrual{}, nil)
		f.accrualRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)

		result, err := f.svc.Generate(ctx, period.ID, GenerateOptions{Types: []billing.ChargeType{billing.ChargeTypeMembership}}, actor)
		require.NoError(t, err)

		require.Len(t, result.Details, 1)
		assert.True(t, result.Details[0].NeedsReview)
		assert.True(t, result.Details[0].Amount.IsZero())
	})
}

func TestAccrualService_UpsertElectricAccrual(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("creates then updates on the same key", func(t *testing.T) {
		f := newAccrualServiceFixture()
		period, err := billing.NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryElectric)
		require.NoError(t, err)
		plot := activePlot("5", 0)

		f.plotRepo.On("FindByID", mock.Anything, plot.ID).Return(plot, nil)
		f.periodRepo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		f.accrualRepo.On("FindByPeriodPlotType", mock.Anything, period.ID, plot.ID, billing.ChargeTypeElectric).Return(nil, nil).Once()
		f.accrualRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		line, err := f.svc.UpsertElectricAccrual(ctx, period.ID, plot.ID, valueobject.NewMoneyFromFloat(420.50), actor)
		require.NoError(t, err)
		assert.Equal(t, "420.50", line.AmountAccrued.StringFixed(2))

		// corrected reading replaces the accrued amount
		f.accrualRepo.On("FindByPeriodPlotType", mock.Anything, period.ID, plot.ID, billing.ChargeTypeElectric).Return(line, nil).Once()

		updated, err := f.svc.UpsertElectricAccrual(ctx, period.ID, plot.ID, valueobject.NewMoneyFromFloat(380), actor)
		require.NoError(t, err)
		assert.Equal(t, line.ID, updated.ID)
		assert.Equal(t, "380.00", updated.AmountAccrued.StringFixed(2))
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		f := newAccrualServiceFixture()
		_, err := f.svc.UpsertElectricAccrual(ctx, uuid.New(), uuid.New(), valueobject.NewMoneyFromFloat(-1), actor)
		assert.Error(t, err)
	})
}
