package lock

import (
	"context"
	"sync"
	"time"

	"github.com/hoa/backend/internal/domain/shared"
)

// ErrLockHeld is returned when another operation holds the requested period
var ErrLockHeld = shared.NewDomainError("OPERATION_IN_PROGRESS", "Another operation is running for this billing period")

// InMemoryPeriodLocker serializes period operations within one process.
// Suitable for single-instance deployments and tests.
type InMemoryPeriodLocker struct {
	mu      sync.Mutex
	held    map[string]time.Time
	nowFunc func() time.Time
}

// NewInMemoryPeriodLocker creates an in-memory period locker
func NewInMemoryPeriodLocker() *InMemoryPeriodLocker {
	return &InMemoryPeriodLocker{
		held:    make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// Acquire takes the lock for the key. The TTL guards against a crashed
// holder never releasing: an expired entry is treated as free.
func (l *InMemoryPeriodLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[key]; ok && l.nowFunc().Before(expiry) {
		return nil, ErrLockHeld
	}
	l.held[key] = l.nowFunc().Add(ttl)

	released := false
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if !released {
			delete(l.held, key)
			released = true
		}
	}, nil
}
