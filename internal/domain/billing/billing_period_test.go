package billing

import (
	"testing"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillingPeriod(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		category PeriodCategory
		wantErr  bool
	}{
		{"valid general period", from, to, PeriodCategoryGeneral, false},
		{"valid electric period", from, to, PeriodCategoryElectric, false},
		{"reversed range", to, from, PeriodCategoryGeneral, true},
		{"invalid category", from, to, PeriodCategory("water"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewBillingPeriod(tt.from, tt.to, tt.category)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PeriodStatusDraft, p.Status)
			assert.True(t, p.IsMutable())
		})
	}
}

func TestNewMonthlyPeriod(t *testing.T) {
	p, err := NewMonthlyPeriod(time.Date(2025, 2, 17, 12, 0, 0, 0, time.UTC), PeriodCategoryGeneral)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), p.DateFrom)
	assert.Equal(t, time.February, p.DateTo.Month())
	assert.Equal(t, "2025-02", p.Label())
	assert.True(t, p.Contains(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBillingPeriod_LockUnlock(t *testing.T) {
	actor := uuid.New()
	p, err := NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), PeriodCategoryGeneral)
	require.NoError(t, err)
	initialVersion := p.Version

	require.NoError(t, p.Lock(actor))
	assert.Equal(t, PeriodStatusLocked, p.Status)
	assert.False(t, p.IsMutable())
	assert.Equal(t, initialVersion+1, p.Version)

	// locking twice fails
	assert.Error(t, p.Lock(actor))

	err = p.EnsureMutable()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERIOD_LOCKED", domainErr.Code)

	require.NoError(t, p.Unlock(actor))
	assert.Equal(t, PeriodStatusDraft, p.Status)
	assert.NoError(t, p.EnsureMutable())

	// unlocking a draft fails
	assert.Error(t, p.Unlock(actor))
}

func TestBillingPeriod_Midpoint(t *testing.T) {
	p, err := NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), PeriodCategoryGeneral)
	require.NoError(t, err)

	mid := p.Midpoint()
	assert.True(t, p.Contains(mid))
	assert.Equal(t, time.June, mid.Month())
}
