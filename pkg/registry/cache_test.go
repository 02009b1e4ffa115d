package registry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) FindByID(ctx context.Context, id tenant.ID) (*registry.Tenant, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*registry.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReader) FindByName(ctx context.Context, name string) (*registry.Tenant, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(*registry.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReader) ListActive(ctx context.Context) ([]registry.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]registry.Tenant), args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testTenant(id tenant.ID, name string) *registry.Tenant {
	return &registry.Tenant{
		ID:     id,
		Name:   name,
		Target: registry.Target{Driver: "sqlite", DSN: "/data/" + name + ".db"},
		Active: true,
	}
}

func TestCachedReader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("serves repeated lookups from memory", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(1)).Return(testTenant(1, "acme"), nil).Once()
		next.On("FindByName", mock.Anything, "acme").Return(testTenant(1, "acme"), nil).Once()

		c := registry.NewCachedReader(next)
		for range 3 {
			got, err := c.FindByID(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, "acme", got.Name)

			got, err = c.FindByName(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, tenant.ID(1), got.ID)
		}
		next.AssertExpectations(t)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("returns copies", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(1)).Return(testTenant(1, "acme"), nil).Once()

		c := registry.NewCachedReader(next)
		first, err := c.FindByID(ctx, 1)
		require.NoError(t, err)
		first.Active = false

		second, err := c.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, second.Active)
	})

	t.Run("expires entries after ttl", func(t *testing.T) {
		t.Parallel()

		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(1)).Return(testTenant(1, "acme"), nil).Twice()

		c := registry.NewCachedReader(next, registry.WithCacheTTL(time.Second), registry.WithClock(clock.Now))
		_, err := c.FindByID(ctx, 1)
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		_, err = c.FindByID(ctx, 1)
		require.NoError(t, err)
		next.AssertExpectations(t)
	})

	t.Run("does not cache misses", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(5)).Return(nil, tenant.ErrTenantNotFound).Twice()

		c := registry.NewCachedReader(next)
		for range 2 {
			_, err := c.FindByID(ctx, 5)
			assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		}
		next.AssertExpectations(t)
		assert.Zero(t, c.Len())
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(1)).Return(testTenant(1, "a"), nil).Twice()
		next.On("FindByID", mock.Anything, tenant.ID(2)).Return(testTenant(2, "b"), nil).Once()
		next.On("FindByID", mock.Anything, tenant.ID(3)).Return(testTenant(3, "c"), nil).Once()

		c := registry.NewCachedReader(next, registry.WithCacheSize(2))
		for _, id := range []tenant.ID{1, 2, 3, 2, 3, 1} {
			_, err := c.FindByID(ctx, id)
			require.NoError(t, err)
		}
		next.AssertExpectations(t)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("invalidate drops both keys", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("FindByID", mock.Anything, tenant.ID(1)).Return(testTenant(1, "acme"), nil).Once()
		next.On("FindByName", mock.Anything, "acme").Return(testTenant(1, "acme"), nil).Once()

		c := registry.NewCachedReader(next)
		_, _ = c.FindByID(ctx, 1)
		_, _ = c.FindByName(ctx, "acme")
		require.Equal(t, 2, c.Len())

		c.Invalidate(1)
		assert.Zero(t, c.Len())
	})

	t.Run("list active passes through", func(t *testing.T) {
		t.Parallel()

		next := new(mockReader)
		next.On("ListActive", mock.Anything).Return([]registry.Tenant{*testTenant(1, "acme")}, nil).Twice()

		c := registry.NewCachedReader(next)
		for range 2 {
			got, err := c.ListActive(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		}
		next.AssertExpectations(t)
	})
}
