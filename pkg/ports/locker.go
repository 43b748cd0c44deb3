package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes validation passes over the same configuration, so a
// pass never reads a sibling item another pass is normalizing.
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// ttl bounds how long a crashed holder can keep the lock (implementation specific).
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
