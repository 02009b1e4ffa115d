// Package uow provides a request-scoped unit of work over one tenant
// session, with generic repositories for the entity types a module
// registers in its Catalog.
//
// A unit of work owns a single tenant connection. Reads run inside a
// transaction begun on first use, and writes staged through repositories
// are flushed in staging order by Commit, all or nothing:
//
//	u, err := manager.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer u.Dispose()
//
//	products, err := uow.Repo[Product](u)
//	if err != nil {
//		return err
//	}
//	if err := products.Add(&Product{ID: uuid.New(), SKU: "A-1"}); err != nil {
//		return err
//	}
//	if _, err := u.Commit(ctx); err != nil {
//		return err
//	}
//
// Projections read a subset of columns into a smaller struct:
//
//	summary, err := uow.GetByIDAs[ProductSummary](ctx, products, id)
//
// Commit failures are classified with tenantdb.Classify, so callers can
// retry on tenantdb.ErrPersistenceUnavailable and report conflicts on
// tenantdb.ErrPersistenceConflict.
package uow
