// Package products is the product catalog module. Its tables live in the
// "products" schema of every tenant database and are reached exclusively
// through units of work bound to the requesting tenant.
package products

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

// Schema marks the products module.
type Schema struct{}

// Module implements tenantdb.Schema.
func (Schema) Module() string { return "products" }

// Factory opens product sessions on tenant databases.
type Factory = tenantdb.Factory[Schema]

// Product is a sellable item of one tenant.
type Product struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SKU        string    `db:"sku" json:"sku"`
	Name       string    `db:"name" json:"name"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	Stock      int       `db:"stock" json:"stock"`
	Version    int64     `db:"version" json:"version"`
}

// Summary is the listing projection of Product.
type Summary struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

//go:embed migrations
var migrations embed.FS

// NewFactory returns the products session factory. Postgres tenants are
// confined to the products schema.
func NewFactory(reader registry.Reader, opts ...tenantdb.FactoryOption) *Factory {
	return tenantdb.NewFactory[Schema](reader, tenantdb.SchemaTarget(Schema{}), opts...)
}

// NewCatalog registers the module entities.
func NewCatalog() *uow.Catalog {
	c := uow.NewCatalog()
	uow.Register[Product](c, uow.Mapping{Table: "products", Key: "id", Version: "version"})
	return c
}

// Migrate applies the products migrations to one tenant database.
func Migrate(ctx context.Context, f *Factory, id tenant.Identity) error {
	return f.Migrate(ctx, id, migrations)
}
