package loader

import "sync"

// Cache holds decoded GET results keyed by endpoint.
//
// One Cache is meant to be shared by every Loader in a process. Put
// overwrites, so concurrent writers for one endpoint resolve as last
// writer wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Get returns the cached value for endpoint.
func (c *Cache) Get(endpoint string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[endpoint]
	return value, ok
}

// Put stores value for endpoint.
func (c *Cache) Put(endpoint string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]any)
	}
	c.entries[endpoint] = value
}

// Len returns the number of cached endpoints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
