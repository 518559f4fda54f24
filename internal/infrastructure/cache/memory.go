package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory key-value store with expiration.
// Used when Redis is disabled and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(5 * time.Minute)

	return store
}

// Set stores a key-value pair with expiration. A non-positive ttl never expires.
func (ms *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item := &memoryItem{value: value}
	if ttl > 0 {
		item.expireTime = time.Now().Add(ttl)
	}
	ms.items[key] = item
	return nil
}

// Get retrieves a value by key
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists || item.expired(time.Now()) {
		return "", false, nil
	}
	return item.value, true, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
	return nil
}

// Len returns the number of stored items, expired or not
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

func (i *memoryItem) expired(now time.Time) bool {
	return !i.expireTime.IsZero() && now.After(i.expireTime)
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.purge(time.Now())
		}
	}
}

func (ms *MemoryStore) purge(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for key, item := range ms.items {
		if item.expired(now) {
			delete(ms.items, key)
		}
	}
}
