package shared

import (
	"context"
	"time"
)

// Locker acquires named mutual-exclusion locks.
// Implementations return ErrLockNotObtained when the lock cannot be taken
// within the configured wait.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}
