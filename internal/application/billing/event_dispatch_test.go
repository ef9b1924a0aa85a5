package billing

import (
	"context"
	"testing"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestPeriodService_PublishesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPeriodRepository)
	scope := newTestScope(repo, new(MockAccrualRepository), new(MockPaymentRepository), new(MockBatchRepository))
	pub := &capturingPublisher{}
	svc := NewPeriodService(scope, repo, lock.NewInMemoryPeriodLocker(), pub, shared.NopAuditRecorder{})

	period := draftPeriod(t)
	period.ClearDomainEvents()
	repo.On("FindByID", mock.Anything, period.ID).Return(period, nil)
	repo.On("SaveWithLock", mock.Anything, period).Return(nil)

	_, err := svc.Lock(ctx, period.ID, uuid.New())
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "billing_period.locked", pub.events[0].EventType())
	assert.Equal(t, period.ID, pub.events[0].AggregateID())
	// the aggregate's queue is drained once dispatched
	assert.Empty(t, period.GetDomainEvents())
}
