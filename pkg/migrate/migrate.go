package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Dialect selects the SQL flavour of a migration set.
type Dialect = goose.Dialect

const (
	Postgres = goose.DialectPostgres
	SQLite   = goose.DialectSQLite3
)

// Logger is the subset of *slog.Logger used to report applied migrations.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
}

// Option adjusts how migrations are applied.
type Option func(*options)

type options struct {
	table string
}

// WithVersionTable keeps applied versions in table instead of goose_db_version.
// Migration sets sharing one database need distinct tables.
func WithVersionTable(table string) Option {
	return func(o *options) { o.table = table }
}

// DialectFor maps a database/sql driver name to its migration dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Up applies every pending migration found at the root of fsys.
// Each call builds its own goose provider, so concurrent migrations of
// different databases do not share state.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, fsys fs.FS, log Logger, opts ...Option) error {
	if db == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrNilDatabase)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var provider *goose.Provider
	var err error
	if o.table == "" {
		provider, err = goose.NewProvider(dialect, db, fsys)
	} else {
		var store database.Store
		store, err = database.NewStore(dialect, o.table)
		if err == nil {
			// A custom store carries the dialect itself.
			provider, err = goose.NewProvider("", db, fsys, goose.WithStore(store))
		}
	}
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if log != nil {
		for _, r := range results {
			log.InfoContext(ctx, "migration applied",
				"version", r.Source.Version,
				"duration", r.Duration,
			)
		}
	}
	return nil
}

// Sub returns the per-dialect directory of an embedded migration tree laid
// out as <root>/postgres and <root>/sqlite.
func Sub(tree fs.FS, root string, dialect Dialect) (fs.FS, error) {
	dir := root + "/postgres"
	if dialect == SQLite {
		dir = root + "/sqlite"
	}
	sub, err := fs.Sub(tree, dir)
	if err != nil {
		return nil, errors.Join(ErrMigrationsDirNotFound, err)
	}
	return sub, nil
}

// Apply selects the migration set of tree matching the driver of db
// (<root>/postgres or <root>/sqlite) and applies it.
func Apply(ctx context.Context, db *sqlx.DB, tree fs.FS, root string, log Logger, opts ...Option) error {
	if db == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrNilDatabase)
	}

	dialect, err := DialectFor(db.DriverName())
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	fsys, err := Sub(tree, root, dialect)
	if err != nil {
		return err
	}
	return Up(ctx, db.DB, dialect, fsys, log, opts...)
}
