package products

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

// StockLine aggregates the inventory of one tenant.
type StockLine struct {
	TenantID   tenant.ID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Products   int       `json:"products"`
	Units      int       `json:"units"`
	ValueCents int64     `json:"value_cents"`
}

// InventoryReport computes a StockLine for every active tenant. Each tenant
// is read through its own unit of work with an explicit identity, at most
// concurrency at a time. The first failure cancels the remaining reads.
func InventoryReport(ctx context.Context, reader registry.Reader, manager *uow.Manager, concurrency int) ([]StockLine, error) {
	tenants, err := reader.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]StockLine, len(tenants))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, t := range tenants {
		g.Go(func() error {
			line, err := stockLine(ctx, manager, t)
			if err != nil {
				return fmt.Errorf("tenant %s: %w", t.ID, err)
			}
			lines[i] = line
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func stockLine(ctx context.Context, manager *uow.Manager, t registry.Tenant) (StockLine, error) {
	u, err := manager.BeginFor(ctx, tenant.Resolved(t.ID))
	if err != nil {
		return StockLine{}, err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Product](u)
	if err != nil {
		return StockLine{}, err
	}
	all, err := repo.GetAll(ctx)
	if err != nil {
		return StockLine{}, err
	}

	line := StockLine{TenantID: t.ID, TenantName: t.Name, Products: len(all)}
	for _, p := range all {
		line.Units += p.Stock
		line.ValueCents += int64(p.Stock) * p.PriceCents
	}
	return line, nil
}
