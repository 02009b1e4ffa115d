// Package migrate applies embedded goose migrations to the registry database
// and to each module schema inside tenant databases.
//
// Migration sets are laid out per dialect so the same module can run on
// PostgreSQL in production and on SQLite in tests or embedded deployments:
//
//	migrations/
//	  postgres/00001_products.sql
//	  sqlite/00001_products.sql
//
// # Usage
//
//	//go:embed migrations
//	var migrations embed.FS
//
//	fsys, err := migrate.Sub(migrations, "migrations", migrate.SQLite)
//	if err != nil {
//		return err
//	}
//	if err := migrate.Up(ctx, db, migrate.SQLite, fsys, log); err != nil {
//		return err
//	}
//
// Up uses a goose Provider rather than the package-level goose functions, so
// migrating many tenant databases concurrently is safe.
package migrate
