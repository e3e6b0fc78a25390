// Package lock provides per-key leases with a time-to-live. A lease that is
// not refreshed expires so a crashed holder cannot block a key forever.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLocked    = errors.New("lock: key is held by another owner")
	ErrLeaseLost = errors.New("lock: lease expired or taken over")
)

type Locker interface {
	// Acquire returns ErrLocked immediately when the key is held. It never waits.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Key() string
	// Refresh extends the lease by its original ttl.
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

func newToken() string {
	return uuid.NewString()
}
