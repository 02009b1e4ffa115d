package tenantdb_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

type productsSchema struct{}

func (productsSchema) Module() string { return "products" }

type staticReader map[tenant.ID]registry.Tenant

func (r staticReader) FindByID(_ context.Context, id tenant.ID) (*registry.Tenant, error) {
	t, ok := r[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

func (r staticReader) FindByName(_ context.Context, name string) (*registry.Tenant, error) {
	for _, t := range r {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (r staticReader) ListActive(context.Context) ([]registry.Tenant, error) {
	var out []registry.Tenant
	for _, t := range r {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func sqliteTenant(t *testing.T, id tenant.ID, active bool) registry.Tenant {
	t.Helper()
	return registry.Tenant{
		ID:     id,
		Name:   "tenant-" + id.String(),
		Target: registry.Target{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), id.String()+".db")},
		Active: active,
	}
}

// countingOpener wraps DefaultOpener and counts connection attempts.
func countingOpener(calls *atomic.Int32) tenantdb.Opener {
	return func(ctx context.Context, target registry.Target) (*sqlx.DB, error) {
		calls.Add(1)
		return tenantdb.DefaultOpener(ctx, target)
	}
}
