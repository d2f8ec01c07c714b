package lock

import (
	"context"
	"sync"
	"time"

	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker is a process-local Locker for single-instance deployments.
// Locks expire after their TTL like their Redis counterparts.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	opts    Options
	now     func() time.Time
}

// NewMemoryLocker creates a new MemoryLocker
func NewMemoryLocker(opts Options) *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		opts:    opts.normalized(),
		now:     time.Now,
	}
}

// Obtain takes the lock, retrying until opts.Wait has elapsed.
// Returns shared.ErrLockNotObtained when the lock stays busy.
func (l *MemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	token := uuid.NewString()
	attempts := l.opts.retries() + 1

	for i := 0; i < attempts; i++ {
		if l.tryObtain(key, token, ttl) {
			return &memoryLock{locker: l, key: key, token: token}, nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(l.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, shared.ErrLockNotObtained
}

func (l *MemoryLocker) tryObtain(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	l.entries[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return true
}

func (l *MemoryLocker) release(key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || e.token != token || !l.now().Before(e.expiresAt) {
		return ErrNotHeld
	}
	delete(l.entries, key)
	return nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

// Release frees the lock. Returns ErrNotHeld if it expired first.
func (m *memoryLock) Release(_ context.Context) error {
	return m.locker.release(m.key, m.token)
}

// Ensure MemoryLocker implements Locker
var _ shared.Locker = (*MemoryLocker)(nil)
