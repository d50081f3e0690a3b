package notification

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a bounded in-process SentCache. Entries expire after
// a TTL and the total entry count is capped; when full, the oldest
// entry is evicted. It is the default cache when no Redis client is
// configured and the one used in tests.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]time.Time // key -> insertion time
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache returns a cache holding at most maxEntries keys for
// at most ttl each. Non-positive arguments fall back to sane bounds.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		entries:    make(map[string]time.Time),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.now().Sub(at) > m.ttl {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) Mark(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}
	m.entries[key] = m.now()
	return nil
}

// evictOldestLocked removes the single oldest entry. Callers hold mu.
func (m *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, at := range m.entries {
		if oldestKey == "" || at.Before(oldestAt) {
			oldestKey, oldestAt = k, at
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
