// Package cache provides a generic, thread-safe LRU cache whose entries
// expire after a fixed lifetime.
//
//	c := cache.NewLRU[string, Tenant](1024, 30*time.Second)
//	c.Put("acme", t)
//	t, ok := c.Get("acme")
//
// Expired entries are dropped lazily on Get. When the cache is full, Put
// evicts the least recently used entry.
package cache
