package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

const selectTenant = `SELECT id, name, display_name, driver, dsn, active FROM tenants`

// Store reads tenants from the master database.
// It is safe for concurrent use and never writes.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a registry store over the master database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// FindByID returns the tenant with the given id.
func (s *Store) FindByID(ctx context.Context, id tenant.ID) (*Tenant, error) {
	return s.get(ctx, selectTenant+` WHERE id = ?`, int64(id))
}

// FindByName returns the tenant with the given unique name.
func (s *Store) FindByName(ctx context.Context, name string) (*Tenant, error) {
	return s.get(ctx, selectTenant+` WHERE name = ?`, name)
}

// ListActive returns all active tenants ordered by id.
func (s *Store) ListActive(ctx context.Context) ([]Tenant, error) {
	var out []Tenant
	q := s.db.Rebind(selectTenant + ` WHERE active = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &out, q, true); err != nil {
		return nil, fmt.Errorf("registry: list active tenants: %w", err)
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, query string, arg any) (*Tenant, error) {
	var t Tenant
	if err := s.db.GetContext(ctx, &t, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("registry: find tenant: %w", err)
	}
	return &t, nil
}
