package repository

import (
	"context"
	"sync"
	"time"

	"financing-ledger/domain"
)

type mockEntry struct {
	financing domain.Financing
	expiresAt time.Time
}

// MockCache keeps records in a map. It is the default cache when no Redis
// address is configured. Entries expire after ttl; zero keeps them forever.
type MockCache struct {
	mu   sync.RWMutex
	data map[uint64]mockEntry
	ttl  time.Duration
	now  func() time.Time
}

func NewMockCache() *MockCache {
	return NewMockCacheWithTTL(0)
}

func NewMockCacheWithTTL(ttl time.Duration) *MockCache {
	return &MockCache{
		data: make(map[uint64]mockEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MockCache) Get(_ context.Context, id uint64) (domain.Financing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[id]
	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return domain.Financing{}, false
	}
	return copyFinancing(e.financing), true
}

func (m *MockCache) Set(_ context.Context, f domain.Financing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := mockEntry{financing: copyFinancing(f)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.data[f.ID] = e
	return nil
}

func (m *MockCache) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, id)
	return nil
}

var _ CacheRepository = (*MockCache)(nil)
