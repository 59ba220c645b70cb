package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a [MemoryCache] created with maxEntries <= 0.
const DefaultMaxEntries = 256

// MemoryCache is an in-process cache with per-entry expiration and a bound
// on the number of entries. When full, the entry closest to expiring (or
// the oldest, for entries without a TTL) is evicted. Safe for concurrent use.
// Contents are lost on restart.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	data      []byte
	storedAt  time.Time
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := memoryEntry{
		data:     append([]byte(nil), data...),
		storedAt: now,
	}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = e
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

// evictLocked removes expired entries, or failing that the single entry
// with the earliest deadline. Caller holds c.mu.
func (c *MemoryCache) evictLocked(now time.Time) {
	var victim string
	var victimAt time.Time
	removed := false

	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
			removed = true
			continue
		}
		deadline := e.expiresAt
		if deadline.IsZero() {
			deadline = e.storedAt
		}
		if victim == "" || deadline.Before(victimAt) {
			victim, victimAt = k, deadline
		}
	}
	if !removed && victim != "" {
		delete(c.entries, victim)
	}
}

var _ Cache = (*MemoryCache)(nil)
