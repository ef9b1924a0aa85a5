package billing

import (
	"testing"
	"time"

	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccrual(t *testing.T, periodID, plotID uuid.UUID, chargeType ChargeType, accrued float64) *PeriodAccrual {
	t.Helper()
	a, err := NewPeriodAccrual(periodID, plotID, chargeType, valueobject.NewMoneyFromFloat(accrued), false, AccrualNoteNone)
	require.NoError(t, err)
	return a
}

func testPayment(t *testing.T, plotID, periodID uuid.UUID, amount float64) *Payment {
	t.Helper()
	p, err := NewPayment(plotID, periodID, valueobject.NewMoneyFromFloat(amount),
		time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), PaymentMethodBank, ChargeTypeMembership, "")
	require.NoError(t, err)
	return p
}

func TestOldestFirstStrategy_Allocate(t *testing.T) {
	plotID := uuid.New()
	mayID, junID, julID := uuid.New(), uuid.New(), uuid.New()
	starts := map[uuid.UUID]int64{
		mayID: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).Unix(),
		junID: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Unix(),
		julID: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
	strategy := NewOldestFirstStrategy(starts)

	t.Run("fills oldest debt first", func(t *testing.T) {
		may := testAccrual(t, mayID, plotID, ChargeTypeMembership, 1000)
		jun := testAccrual(t, junID, plotID, ChargeTypeMembership, 1000)
		jul := testAccrual(t, julID, plotID, ChargeTypeMembership, 1000)
		payment := testPayment(t, plotID, julID, 1500)

		// pass in shuffled order; the strategy sorts by period start
		result, err := strategy.Allocate(payment, []*PeriodAccrual{jul, may, jun})
		require.NoError(t, err)

		require.Len(t, result.Lines, 2)
		assert.Equal(t, may.ID, result.Lines[0].AccrualID)
		assert.Equal(t, "1000.00", result.Lines[0].Amount.StringFixed(2))
		assert.Equal(t, jun.ID, result.Lines[1].AccrualID)
		assert.Equal(t, "500.00", result.Lines[1].Amount.StringFixed(2))

		assert.True(t, may.IsSettled())
		assert.Equal(t, "500.00", jun.Outstanding().StringFixed(2))
		assert.Equal(t, "1000.00", jul.Outstanding().StringFixed(2))
		assert.True(t, payment.UnallocatedAmount.IsZero())
	})

	t.Run("overpayment remainder stays on the payment", func(t *testing.T) {
		jun := testAccrual(t, junID, plotID, ChargeTypeMembership, 800)
		payment := testPayment(t, plotID, junID, 1000)

		result, err := strategy.Allocate(payment, []*PeriodAccrual{jun})
		require.NoError(t, err)

		assert.Equal(t, "800.00", result.Allocated.StringFixed(2))
		assert.Equal(t, "200.00", result.Unallocated.StringFixed(2))
		assert.True(t, payment.HasCredit())
	})

	t.Run("skips accruals of other plots and categories", func(t *testing.T) {
		otherPlot := testAccrual(t, junID, uuid.New(), ChargeTypeMembership, 500)
		electric := testAccrual(t, junID, plotID, ChargeTypeElectric, 500)
		payment := testPayment(t, plotID, junID, 300)

		result, err := strategy.Allocate(payment, []*PeriodAccrual{otherPlot, electric})
		require.NoError(t, err)

		assert.Empty(t, result.Lines)
		assert.Equal(t, "300.00", result.Unallocated.StringFixed(2))
	})

	t.Run("settled accruals receive nothing", func(t *testing.T) {
		settled := testAccrual(t, mayID, plotID, ChargeTypeMembership, 100)
		require.NoError(t, settled.ApplyPayment(valueobject.NewMoneyFromFloat(100)))
		open := testAccrual(t, junID, plotID, ChargeTypeMembership, 100)
		payment := testPayment(t, plotID, junID, 100)

		result, err := strategy.Allocate(payment, []*PeriodAccrual{settled, open})
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		assert.Equal(t, open.ID, result.Lines[0].AccrualID)
	})

	t.Run("voided payment is rejected", func(t *testing.T) {
		payment := testPayment(t, plotID, junID, 100)
		require.NoError(t, payment.Void("entry error"))

		_, err := strategy.Allocate(payment, nil)
		assert.Error(t, err)
	})
}
