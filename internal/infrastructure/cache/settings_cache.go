package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// SettingsCache provides thread-safe TTL caching for settings-store values.
// Format and threshold settings change rarely and are read on every
// admission; the active fiscal year is invalidated explicitly on rollover so
// the TTL never delays a year switch.
type SettingsCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// NewSettingsCache creates a cache whose values expire after ttl. A zero or
// negative ttl disables caching entirely.
func NewSettingsCache(ttl time.Duration) *SettingsCache {
	return &SettingsCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key if it has not expired.
func (c *SettingsCache) Get(key string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set stores a value for key with the cache TTL.
func (c *SettingsCache) Set(key, value string) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate removes a single key.
func (c *SettingsCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes every cached value.
func (c *SettingsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}
