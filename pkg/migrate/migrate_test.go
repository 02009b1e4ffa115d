package migrate_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/tenantdb/pkg/migrate"
)

func TestDialectFor(t *testing.T) {
	t.Parallel()

	d, err := migrate.DialectFor("pgx")
	require.NoError(t, err)
	assert.Equal(t, migrate.Postgres, d)

	d, err = migrate.DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, migrate.SQLite, d)

	_, err = migrate.DialectFor("oracle")
	assert.ErrorIs(t, err, migrate.ErrUnsupportedDriver)
}

var tree = fstest.MapFS{
	"migrations/sqlite/00001_widgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE widgets (id TEXT PRIMARY KEY, name TEXT NOT NULL);

-- +goose Down
DROP TABLE widgets;
`)},
	"migrations/postgres/00001_widgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE widgets (id UUID PRIMARY KEY);
`)},
}

func TestUp(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "widgets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fsys, err := migrate.Sub(tree, "migrations", migrate.SQLite)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, migrate.Up(ctx, db, migrate.SQLite, fsys, nil))
	// Applying twice is a no-op.
	require.NoError(t, migrate.Up(ctx, db, migrate.SQLite, fsys, nil))

	_, err = db.ExecContext(ctx, `INSERT INTO widgets (id, name) VALUES ('a', 'first')`)
	require.NoError(t, err)
}

func TestUp_NilDatabase(t *testing.T) {
	t.Parallel()

	err := migrate.Up(context.Background(), nil, migrate.SQLite, fstest.MapFS{}, nil)
	assert.ErrorIs(t, err, migrate.ErrFailedToApplyMigrations)
	assert.ErrorIs(t, err, migrate.ErrNilDatabase)
}

func TestApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("picks set by driver", func(t *testing.T) {
		t.Parallel()

		db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "apply.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		require.NoError(t, migrate.Apply(ctx, db, tree, "migrations", nil))

		var n int
		require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM widgets`))
		assert.Zero(t, n)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Parallel()

		db := sqlx.NewDb(&sql.DB{}, "oracle")
		err := migrate.Apply(ctx, db, tree, "migrations", nil)
		assert.ErrorIs(t, err, migrate.ErrFailedToApplyMigrations)
		assert.ErrorIs(t, err, migrate.ErrUnsupportedDriver)
	})

	t.Run("nil database", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, migrate.Apply(ctx, nil, tree, "migrations", nil), migrate.ErrNilDatabase)
	})
}

func TestApply_SeparateVersionTables(t *testing.T) {
	t.Parallel()

	gadgets := fstest.MapFS{
		"migrations/sqlite/00001_gadgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE gadgets (id TEXT PRIMARY KEY);
`)},
	}

	ctx := context.Background()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Both sets start at version 1; one version table would skip the second.
	require.NoError(t, migrate.Apply(ctx, db, tree, "migrations", nil, migrate.WithVersionTable("goose_widgets_version")))
	require.NoError(t, migrate.Apply(ctx, db, gadgets, "migrations", nil, migrate.WithVersionTable("goose_gadgets_version")))

	var n int
	require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM gadgets`))
	assert.Zero(t, n)
}
