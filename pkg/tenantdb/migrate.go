package tenantdb

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/migrate"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Migrate applies the module's migration tree (laid out as
// migrations/postgres and migrations/sqlite) to one tenant database.
// On postgres the module schema is created first. Versions are tracked in a
// per-module table because sqlite tenants keep every module in one file.
func (f *Factory[S]) Migrate(ctx context.Context, id tenant.Identity, tree fs.FS) error {
	sess, err := f.CreateSession(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			f.log.WarnContext(ctx, "failed to close migration session", logger.Error(err))
		}
	}()

	db := sess.DB()
	if d, _ := migrate.DialectFor(db.DriverName()); d == migrate.Postgres {
		stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{f.module}.Sanitize())
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return Classify(err)
		}
	}

	log := f.log.With(logger.TenantID(sess.TenantID()))
	table := migrate.WithVersionTable("goose_" + f.module + "_version")
	if err := migrate.Apply(ctx, db, tree, "migrations", log, table); err != nil {
		return fmt.Errorf("tenant %s: %w", sess.TenantID(), err)
	}
	return nil
}
