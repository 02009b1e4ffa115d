// Package identity stores the accounts of a tenant and turns verified
// credentials into access tokens carrying the tenant claim. Accounts live in
// the "identity" schema of each tenant database, so the same email may be
// registered independently by different tenants.
package identity

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

// Schema marks the identity module.
type Schema struct{}

// Module implements tenantdb.Schema.
func (Schema) Module() string { return "identity" }

// Factory opens identity sessions on tenant databases.
type Factory = tenantdb.Factory[Schema]

// Account is a login of one tenant.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Version      int64     `db:"version" json:"-"`
}

// credentials is the projection read during authentication.
type credentials struct {
	ID           uuid.UUID `db:"id"`
	PasswordHash []byte    `db:"password_hash"`
}

//go:embed migrations
var migrations embed.FS

// NewFactory returns the identity session factory.
func NewFactory(reader registry.Reader, opts ...tenantdb.FactoryOption) *Factory {
	return tenantdb.NewFactory[Schema](reader, tenantdb.SchemaTarget(Schema{}), opts...)
}

// NewCatalog registers the module entities.
func NewCatalog() *uow.Catalog {
	c := uow.NewCatalog()
	uow.Register[Account](c, uow.Mapping{Table: "accounts", Key: "id", Version: "version"})
	return c
}

// Migrate applies the identity migrations to one tenant database.
func Migrate(ctx context.Context, f *Factory, id tenant.Identity) error {
	return f.Migrate(ctx, id, migrations)
}
