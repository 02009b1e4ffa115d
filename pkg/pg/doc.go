// Package pg connects to the PostgreSQL database that hosts the tenant
// registry and classifies pgx errors.
//
// Connect builds a pgxpool.Pool from Config, retrying on startup, and SQLX
// adapts the pool for sqlx consumers. The Is* helpers unwrap *pgconn.PgError
// and related pgx errors so callers can map them onto their own sentinels.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	store := registry.NewStore(pg.SQLX(pool))
package pg
