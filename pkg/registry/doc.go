// Package registry is the read path over the tenant registry: the master
// database that maps a tenant id to the coordinates of its physical database.
//
// The routing layer only reads the registry. Tenants are created, rotated and
// deactivated by administrative tooling; deactivation is soft so that the
// record stays around while data still references it.
//
// # Usage
//
//	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
//	if err := registry.Migrate(ctx, db, log); err != nil {
//		return err
//	}
//	reader := registry.NewCachedReader(registry.NewStore(db),
//		registry.WithCacheTTL(15*time.Second),
//	)
//
// CachedReader keeps records in process memory only. Connection coordinates
// carry credentials and are never written to a shared cache.
package registry
