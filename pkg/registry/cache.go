package registry

import (
	"context"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/cache"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

const (
	// DefaultCacheSize is the default maximum number of cached records.
	DefaultCacheSize = 1000

	// DefaultCacheTTL bounds how long a deactivation can go unnoticed.
	DefaultCacheTTL = 30 * time.Second
)

// CachedReader is a read-through cache in front of a Reader.
// FindByID and FindByName are cached in process memory with a TTL and LRU
// eviction; ListActive always hits the underlying reader. Not-found results
// are never cached.
type CachedReader struct {
	next  Reader
	items *cache.LRU[cacheKey, Tenant]
}

type cacheKey struct {
	byName bool
	id     tenant.ID
	name   string
}

type cacheSettings struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// CacheOption configures a CachedReader.
type CacheOption func(*cacheSettings)

// WithCacheTTL sets the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(s *cacheSettings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCacheSize sets the maximum number of cached records.
func WithCacheSize(size int) CacheOption {
	return func(s *cacheSettings) {
		if size > 0 {
			s.capacity = size
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(s *cacheSettings) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCachedReader wraps next with an in-memory cache.
func NewCachedReader(next Reader, opts ...CacheOption) *CachedReader {
	s := cacheSettings{
		ttl:      DefaultCacheTTL,
		capacity: DefaultCacheSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &CachedReader{
		next:  next,
		items: cache.NewLRU[cacheKey, Tenant](s.capacity, s.ttl, cache.WithClock(s.now)),
	}
}

// FindByID returns the tenant with the given id.
func (c *CachedReader) FindByID(ctx context.Context, id tenant.ID) (*Tenant, error) {
	return c.lookup(cacheKey{id: id}, func() (*Tenant, error) { return c.next.FindByID(ctx, id) })
}

// FindByName returns the tenant with the given name.
func (c *CachedReader) FindByName(ctx context.Context, name string) (*Tenant, error) {
	return c.lookup(cacheKey{byName: true, name: name}, func() (*Tenant, error) { return c.next.FindByName(ctx, name) })
}

// ListActive is not cached.
func (c *CachedReader) ListActive(ctx context.Context) ([]Tenant, error) {
	return c.next.ListActive(ctx)
}

// Invalidate drops every cached record of the tenant.
func (c *CachedReader) Invalidate(id tenant.ID) {
	c.items.RemoveFunc(func(_ cacheKey, t Tenant) bool { return t.ID == id })
}

// Len returns the number of cached records.
func (c *CachedReader) Len() int {
	return c.items.Len()
}

func (c *CachedReader) lookup(key cacheKey, load func() (*Tenant, error)) (*Tenant, error) {
	// Values are stored by copy, so callers never share a record.
	if t, ok := c.items.Get(key); ok {
		return &t, nil
	}
	t, err := load()
	if err != nil {
		return nil, err
	}
	c.items.Put(key, *t)
	return t, nil
}
