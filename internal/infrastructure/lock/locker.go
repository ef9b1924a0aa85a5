// Package lock provides per-period mutual exclusion for mutating billing
// operations. Generation, import and lock/unlock runs for the same period
// must not interleave.
package lock

import (
	"context"
	"time"
)

// PeriodLocker serializes mutating operations per billing period.
// Acquire returns a release function on success and ErrLockHeld when
// another operation holds the same period.
type PeriodLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
