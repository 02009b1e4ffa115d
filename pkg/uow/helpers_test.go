package uow_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

type inventory struct{}

func (inventory) Module() string { return "inventory" }

type item struct {
	ID    string `db:"id"`
	SKU   string `db:"sku"`
	Name  string `db:"name"`
	Stock int    `db:"stock"`
}

type itemSummary struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type counter struct {
	ID      string `db:"id"`
	Hits    int    `db:"hits"`
	Version int64  `db:"version"`
}

type unregistered struct {
	ID string `db:"id"`
}

const itemsTable = `CREATE TABLE items (
	id    TEXT PRIMARY KEY,
	sku   TEXT NOT NULL UNIQUE,
	name  TEXT NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0
)`

const countersTable = `CREATE TABLE counters (
	id      TEXT PRIMARY KEY,
	hits    INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1
)`

type staticReader map[tenant.ID]registry.Tenant

func (r staticReader) FindByID(_ context.Context, id tenant.ID) (*registry.Tenant, error) {
	t, ok := r[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

func (r staticReader) FindByName(context.Context, string) (*registry.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}

func (r staticReader) ListActive(context.Context) ([]registry.Tenant, error) {
	return nil, nil
}

func newCatalog() *uow.Catalog {
	c := uow.NewCatalog()
	uow.Register[item](c, uow.Mapping{Table: "items"})
	uow.Register[counter](c, uow.Mapping{Table: "counters", Version: "version"})
	return c
}

// newTenant creates a sqlite tenant database with the items and counters tables.
func newTenant(t *testing.T, id tenant.ID) registry.Tenant {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), id.String()+".db")
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	for _, ddl := range []string{itemsTable, countersTable} {
		_, err = db.Exec(ddl)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	return registry.Tenant{
		ID:     id,
		Name:   "tenant-" + id.String(),
		Target: registry.Target{Driver: "sqlite", DSN: dsn + "?_pragma=busy_timeout(5000)"},
		Active: true,
	}
}

type fixture struct {
	manager *uow.Manager
	metrics *tenantdb.Metrics
}

func newFixture(t *testing.T, ids ...tenant.ID) fixture {
	t.Helper()

	reader := staticReader{}
	for _, id := range ids {
		reader[id] = newTenant(t, id)
	}
	metrics := tenantdb.NewMetrics(prometheus.NewRegistry())
	factory := tenantdb.NewFactory[inventory](reader, tenantdb.SchemaTarget(inventory{}),
		tenantdb.WithLogger(logger.Discard()),
		tenantdb.WithMetrics(metrics),
	)
	return fixture{
		manager: uow.NewManager(factory, newCatalog()),
		metrics: metrics,
	}
}

func (f fixture) openSessions(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, f.metrics.OpenSessions.WithLabelValues("inventory").Write(&m))
	return m.GetGauge().GetValue()
}

func (f fixture) begin(t *testing.T, id tenant.ID) *uow.UnitOfWork {
	t.Helper()
	u, err := f.manager.BeginFor(context.Background(), tenant.Resolved(id))
	require.NoError(t, err)
	t.Cleanup(u.Dispose)
	return u
}

func repo(t *testing.T, u *uow.UnitOfWork) *uow.Repository[item] {
	t.Helper()
	r, err := uow.Repo[item](u)
	require.NoError(t, err)
	return r
}

// seed commits items for tenant id in its own unit of work.
func (f fixture) seed(t *testing.T, id tenant.ID, items ...item) {
	t.Helper()
	u := f.begin(t, id)
	r := repo(t, u)
	for i := range items {
		require.NoError(t, r.Add(&items[i]))
	}
	_, err := u.Commit(context.Background())
	require.NoError(t, err)
	u.Dispose()
}
