// Package bucketlock serializes writes to a scheduling day bucket or a
// weekly plan so concurrent conflict recomputation stays consistent.
package bucketlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when the lock is already held by another owner.
var ErrLockHeld = errors.New("lock already held")

// Lock represents an acquired lock that must be released by the holder.
type Lock interface {
	// Release releases the lock. Releasing a lock that expired or is held
	// by someone else is a no-op.
	Release(ctx context.Context) error
}

// Locker acquires named locks with a TTL.
type Locker interface {
	// Acquire attempts to take the lock. Returns ErrLockHeld when the
	// lock is currently held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// DayBucketKey returns the lock key for a scheduling day bucket.
func DayBucketKey(userID uuid.UUID, year, week, dayOfWeek int) string {
	return fmt.Sprintf("planwise:bucket:%s:%d:%d:%d", userID, year, week, dayOfWeek)
}

// PlanKey returns the lock key for a weekly plan.
func PlanKey(userID uuid.UUID, year, week int) string {
	return fmt.Sprintf("planwise:plan:%s:%d:%d", userID, year, week)
}

// NoopLocker never blocks. Used in local single-process mode where the
// SQLite write lock already serializes bucket updates.
type NoopLocker struct{}

// NewNoopLocker creates a locker that always succeeds.
func NewNoopLocker() *NoopLocker {
	return &NoopLocker{}
}

// Acquire always succeeds.
func (l *NoopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	return noopLock{}, nil
}

type noopLock struct{}

func (noopLock) Release(ctx context.Context) error { return nil }
