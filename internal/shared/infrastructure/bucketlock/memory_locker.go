package bucketlock

import (
	"context"
	"sync"
	"time"
)

// InMemoryLocker is a process-local implementation for testing.
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

// NewInMemoryLocker creates a new in-memory locker.
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]time.Time)}
}

// Acquire attempts to take the lock.
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.locks[key]; held && time.Now().Before(expiry) {
		return nil, ErrLockHeld
	}

	l.locks[key] = time.Now().Add(ttl)
	return &memoryLock{locker: l, key: key}, nil
}

type memoryLock struct {
	locker *InMemoryLocker
	key    string
}

func (l *memoryLock) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.locks, l.key)
	return nil
}
