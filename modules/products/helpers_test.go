package products_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/modules/products"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

// env is a master registry plus per-tenant sqlite files, all under t.TempDir.
type env struct {
	dir     string
	master  *sqlx.DB
	reader  registry.Reader
	factory *products.Factory
	manager *uow.Manager
	svc     *products.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	master, err := sqlx.Open("sqlite", filepath.Join(dir, "master.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Close() })
	require.NoError(t, registry.Migrate(context.Background(), master, nil))

	reader := registry.NewStore(master)
	factory := products.NewFactory(reader, tenantdb.WithLogger(logger.Discard()))
	manager := uow.NewManager(factory, products.NewCatalog())

	return &env{
		dir:     dir,
		master:  master,
		reader:  reader,
		factory: factory,
		manager: manager,
		svc:     products.NewService(manager, logger.Discard()),
	}
}

// addTenant registers a tenant and, when active, migrates its products schema.
func (e *env) addTenant(t *testing.T, name string, active bool) tenant.ID {
	t.Helper()

	dsn := filepath.Join(e.dir, name+".db") + "?_pragma=busy_timeout(5000)"
	res, err := e.master.Exec(
		`INSERT INTO tenants (name, display_name, driver, dsn, active) VALUES (?, ?, ?, ?, ?)`,
		name, name, "sqlite", dsn, active,
	)
	require.NoError(t, err)
	raw, err := res.LastInsertId()
	require.NoError(t, err)

	id := tenant.ID(raw)
	if active {
		require.NoError(t, products.Migrate(context.Background(), e.factory, tenant.Resolved(id)))
	}
	return id
}

// scope returns a context pinned to id, as a background job would use.
func scope(id tenant.ID) context.Context {
	return tenant.WithExplicit(context.Background(), id)
}

func (e *env) seed(t *testing.T, id tenant.ID, n int) []*products.Product {
	t.Helper()

	out := make([]*products.Product, 0, n)
	for i := range n {
		p, err := e.svc.Create(scope(id), products.CreateInput{
			SKU:        fmt.Sprintf("SKU-%d", i+1),
			Name:       fmt.Sprintf("Product %d", i+1),
			PriceCents: int64(100 * (i + 1)),
			Stock:      i + 1,
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}
