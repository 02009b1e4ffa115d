package registry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestStore(t *testing.T) {
	t.Parallel()

	db := newMasterDB(t)
	acme := insertTenant(t, db, "acme", true)
	globex := insertTenant(t, db, "globex", false)
	initech := insertTenant(t, db, "initech", true)

	store := registry.NewStore(db)
	ctx := context.Background()

	t.Run("find by id", func(t *testing.T) {
		t.Parallel()

		got, err := store.FindByID(ctx, tenant.ID(acme))
		require.NoError(t, err)
		assert.Equal(t, tenant.ID(acme), got.ID)
		assert.Equal(t, "acme", got.Name)
		assert.Equal(t, "acme Inc.", got.DisplayName)
		assert.Equal(t, registry.Target{Driver: "sqlite", DSN: "/data/acme.db"}, got.Target)
		assert.True(t, got.Active)
	})

	t.Run("inactive tenants are returned as data", func(t *testing.T) {
		t.Parallel()

		got, err := store.FindByID(ctx, tenant.ID(globex))
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("find by name", func(t *testing.T) {
		t.Parallel()

		got, err := store.FindByName(ctx, "initech")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID(initech), got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := store.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

		_, err = store.FindByName(ctx, "nobody")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("list active", func(t *testing.T) {
		t.Parallel()

		got, err := store.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "acme", got[0].Name)
		assert.Equal(t, "initech", got[1].Name)
	})

	t.Run("concurrent readers", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := store.FindByName(ctx, "acme")
				if assert.NoError(t, err) {
					assert.Equal(t, tenant.ID(acme), got.ID)
				}
			}()
		}
		wg.Wait()
	})
}
