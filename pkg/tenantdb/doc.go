// Package tenantdb opens database sessions bound to one tenant and one
// persistence module.
//
// Each module declares a marker type implementing Schema and instantiates a
// Factory for it. The factory looks the tenant up in the registry, refuses
// unresolved identities and inactive tenants before any connection attempt,
// points the connection at the module's schema and returns a Session that
// owns exactly one connection:
//
//	type Schema struct{}
//
//	func (Schema) Module() string { return "products" }
//
//	factory := tenantdb.NewFactory[Schema](reader, tenantdb.SchemaTarget(Schema{}),
//		tenantdb.WithLogger(log),
//		tenantdb.WithMetrics(metrics),
//	)
//	sess, err := factory.SessionFromContext(ctx)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
// Sessions are never pooled across tenants or requests. Driver errors are
// mapped onto ErrPersistenceUnavailable and ErrPersistenceConflict by Classify.
package tenantdb
