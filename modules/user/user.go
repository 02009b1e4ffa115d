// Package user keeps per-account profile data in the "user" schema of each
// tenant database. Profiles are keyed by the identity account id; the two
// modules share a tenant database but never a session.
package user

import (
	"context"
	"embed"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

// Schema marks the user module.
type Schema struct{}

// Module implements tenantdb.Schema.
func (Schema) Module() string { return "user" }

// Factory opens user sessions on tenant databases.
type Factory = tenantdb.Factory[Schema]

// Profile holds the preferences of one account.
type Profile struct {
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Locale    string    `db:"locale" json:"locale"`
	Timezone  string    `db:"timezone" json:"timezone"`
	Bio       string    `db:"bio" json:"bio"`
}

//go:embed migrations
var migrations embed.FS

// NewFactory returns the user session factory.
func NewFactory(reader registry.Reader, opts ...tenantdb.FactoryOption) *Factory {
	return tenantdb.NewFactory[Schema](reader, tenantdb.SchemaTarget(Schema{}), opts...)
}

// NewCatalog registers the module entities.
func NewCatalog() *uow.Catalog {
	c := uow.NewCatalog()
	uow.Register[Profile](c, uow.Mapping{Table: "profiles", Key: "account_id"})
	return c
}

// Migrate applies the user migrations to one tenant database.
func Migrate(ctx context.Context, f *Factory, id tenant.Identity) error {
	return f.Migrate(ctx, id, migrations)
}
