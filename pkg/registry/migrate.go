package registry

import (
	"context"
	"embed"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/migrate"
)

//go:embed migrations
var migrations embed.FS

// Migrate creates or upgrades the tenants table in the master database.
func Migrate(ctx context.Context, db *sqlx.DB, log migrate.Logger) error {
	return migrate.Apply(ctx, db, migrations, "migrations", log)
}
