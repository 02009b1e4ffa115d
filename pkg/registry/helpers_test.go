package registry_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
)

func newMasterDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "master.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, registry.Migrate(context.Background(), db, nil))
	return db
}

func insertTenant(t *testing.T, db *sqlx.DB, name string, active bool) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO tenants (name, display_name, driver, dsn, active) VALUES (?, ?, ?, ?, ?)`,
		name, name+" Inc.", "sqlite", "/data/"+name+".db", active,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
