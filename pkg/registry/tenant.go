package registry

import (
	"context"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Target holds the physical connection coordinates of a tenant database.
// Driver is a database/sql driver name ("pgx" or "sqlite"), DSN the data
// source understood by that driver.
type Target struct {
	Driver string `db:"driver"`
	DSN    string `db:"dsn"`
}

// Tenant is a registry record. The embedded Target must not leave the
// persistence routing layer.
type Tenant struct {
	ID          tenant.ID `db:"id"`
	Name        string    `db:"name"`
	DisplayName string    `db:"display_name"`
	Target
	Active bool `db:"active"`
}

// Reader is the read path over the tenant registry.
type Reader interface {
	// FindByID returns tenant.ErrTenantNotFound if no tenant has the id.
	FindByID(ctx context.Context, id tenant.ID) (*Tenant, error)

	// FindByName returns tenant.ErrTenantNotFound if no tenant has the name.
	FindByName(ctx context.Context, name string) (*Tenant, error)

	// ListActive returns all active tenants ordered by id.
	ListActive(ctx context.Context) ([]Tenant, error)
}
