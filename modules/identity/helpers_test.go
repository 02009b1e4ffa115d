package identity_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/tenantdb/modules/identity"
	"github.com/dmitrymomot/tenantdb/pkg/jwt"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

type env struct {
	dir     string
	master  *sqlx.DB
	factory *identity.Factory
	tokens  *jwt.Service
	svc     *identity.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	master, err := sqlx.Open("sqlite", filepath.Join(dir, "master.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Close() })
	require.NoError(t, registry.Migrate(context.Background(), master, nil))

	factory := identity.NewFactory(registry.NewStore(master), tenantdb.WithLogger(logger.Discard()))
	tokens, err := jwt.NewFromString("test-signing-key", jwt.WithTTL(time.Minute))
	require.NoError(t, err)

	return &env{
		dir:     dir,
		master:  master,
		factory: factory,
		tokens:  tokens,
		svc: identity.NewService(uow.NewManager(factory, identity.NewCatalog()),
			identity.WithTokenIssuer(tokens),
			identity.WithBcryptCost(bcrypt.MinCost),
			identity.WithLogger(logger.Discard()),
		),
	}
}

func (e *env) addTenant(t *testing.T, name string) tenant.ID {
	t.Helper()

	dsn := filepath.Join(e.dir, name+".db") + "?_pragma=busy_timeout(5000)"
	res, err := e.master.Exec(
		`INSERT INTO tenants (name, display_name, driver, dsn, active) VALUES (?, ?, ?, ?, ?)`,
		name, name, "sqlite", dsn, true,
	)
	require.NoError(t, err)
	raw, err := res.LastInsertId()
	require.NoError(t, err)

	id := tenant.ID(raw)
	require.NoError(t, identity.Migrate(context.Background(), e.factory, tenant.Resolved(id)))
	return id
}

func scope(id tenant.ID) context.Context {
	return tenant.WithExplicit(context.Background(), id)
}
