package billing

import (
	"context"
	"testing"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPeriodService(periodRepo *MockPeriodRepository) *PeriodService {
	scope := newTestScope(periodRepo, new(MockAccrualRepository), new(MockPaymentRepository), new(MockBatchRepository))
	return NewPeriodService(scope, periodRepo, lock.NewInMemoryPeriodLocker(), shared.NopEventPublisher{}, shared.NopAuditRecorder{})
}

func TestPeriodService_EnsurePeriodFor(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("returns existing period", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)
		existing, err := billing.NewMonthlyPeriod(date, billing.PeriodCategoryGeneral)
		require.NoError(t, err)

		repo.On("FindByDateAndCategory", mock.Anything, date, billing.PeriodCategoryGeneral).Return(existing, nil)

		got, err := svc.EnsurePeriodFor(ctx, date, billing.PeriodCategoryGeneral)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("creates draft month container when missing", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)

		repo.On("FindByDateAndCategory", mock.Anything, date, billing.PeriodCategoryGeneral).Return(nil, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.BillingPeriod) bool {
			return p.Status == billing.PeriodStatusDraft && p.Label() == "2025-07"
		})).Return(nil)

		got, err := svc.EnsurePeriodFor(ctx, date, billing.PeriodCategoryGeneral)
		require.NoError(t, err)
		assert.Equal(t, billing.PeriodCategoryGeneral, got.Category)
		assert.True(t, got.Contains(date))
	})
}

func TestPeriodService_LockUnlock(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("lock persists with version check", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)
		period, err := billing.NewMonthlyPeriod(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		repo.On("SaveWithLock", mock.Anything, period).Return(nil)

		locked, err := svc.Lock(ctx, period.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, billing.PeriodStatusLocked, locked.Status)
		repo.AssertCalled(t, "SaveWithLock", mock.Anything, period)
	})

	t.Run("unlock of a draft period fails and saves nothing", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)
		period, err := billing.NewMonthlyPeriod(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, period.ID).Return(period, nil)

		_, err = svc.Unlock(ctx, period.ID, actor)
		require.Error(t, err)
		assert.Equal(t, billing.PeriodStatusDraft, period.Status)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("missing period", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)
		id := uuid.New()

		repo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.Lock(ctx, id, actor)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PERIOD_NOT_FOUND", domainErr.Code)
	})

	t.Run("concurrency conflict surfaces", func(t *testing.T) {
		repo := new(MockPeriodRepository)
		svc := newPeriodService(repo)
		period, err := billing.NewMonthlyPeriod(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), billing.PeriodCategoryGeneral)
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
		repo.On("SaveWithLock", mock.Anything, period).Return(shared.ErrConcurrencyConflict)

		_, err = svc.Lock(ctx, period.ID, actor)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}
