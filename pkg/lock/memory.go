package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker keeps leases in process memory. It only excludes callers that
// share the same instance.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return nil, ErrLocked
	}

	token := newToken()
	l.entries[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return &memoryLease{locker: l, key: key, token: token, ttl: ttl}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  string
	ttl    time.Duration
}

func (m *memoryLease) Key() string { return m.key }

func (m *memoryLease) Refresh(ctx context.Context) error {
	l := m.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[m.key]
	if !ok || e.token != m.token || !now.Before(e.expiresAt) {
		return ErrLeaseLost
	}
	e.expiresAt = now.Add(m.ttl)
	l.entries[m.key] = e
	return nil
}

func (m *memoryLease) Release(ctx context.Context) error {
	l := m.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[m.key]
	if !ok || e.token != m.token {
		return ErrLeaseLost
	}
	delete(l.entries, m.key)
	return nil
}
