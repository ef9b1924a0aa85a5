package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingPeriodEvents(t *testing.T) {
	period, err := NewMonthlyPeriod(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), PeriodCategoryGeneral)
	require.NoError(t, err)

	events := period.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "billing_period.created", events[0].EventType())
	assert.Equal(t, period.ID, events[0].AggregateID())
	assert.Equal(t, "BillingPeriod", events[0].AggregateType())
	period.ClearDomainEvents()

	actor := uuid.New()
	require.NoError(t, period.Lock(actor))
	require.NoError(t, period.Unlock(actor))

	events = period.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "billing_period.locked", events[0].EventType())
	assert.Equal(t, "billing_period.unlocked", events[1].EventType())
	assert.Equal(t, period.ID, events[1].AggregateID())
}

func TestPaymentEvents(t *testing.T) {
	plotID := uuid.New()
	payment := testPayment(t, plotID, uuid.New(), 500)

	events := payment.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "payment.imported", events[0].EventType())
	assert.Equal(t, payment.ID, events[0].AggregateID())
	assert.Equal(t, "Payment", events[0].AggregateType())

	accrual := testAccrual(t, uuid.New(), plotID, ChargeTypeMembership, 500)
	strategy := NewOldestFirstStrategy(map[uuid.UUID]int64{accrual.PeriodID: 1})
	_, err := strategy.Allocate(payment, []*PeriodAccrual{accrual})
	require.NoError(t, err)

	events = payment.GetDomainEvents()
	require.Len(t, events, 2)
	allocated, ok := events[1].(*PaymentAllocatedEvent)
	require.True(t, ok)
	assert.Equal(t, "payment.allocated", allocated.EventType())
	assert.Equal(t, "500.00", allocated.Allocated.StringFixed(2))
	assert.Equal(t, plotID, allocated.PlotID)
}
