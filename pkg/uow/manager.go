package uow

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

// Manager begins units of work for one persistence module.
type Manager struct {
	open    func(ctx context.Context, id tenant.Identity) (Session, error)
	catalog *Catalog
	log     *slog.Logger
	metrics *tenantdb.Metrics
	module  string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger overrides the logger inherited from the factory.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager returns a manager that opens sessions through f and resolves
// repositories from catalog.
func NewManager[S tenantdb.Schema](f *tenantdb.Factory[S], catalog *Catalog, opts ...ManagerOption) *Manager {
	m := &Manager{
		open: func(ctx context.Context, id tenant.Identity) (Session, error) {
			sess, err := f.CreateSession(ctx, id)
			if err != nil {
				return nil, err
			}
			return sess, nil
		},
		catalog: catalog,
		log:     f.Logger(),
		metrics: f.Metrics(),
		module:  f.Module(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Module returns the module the manager serves.
func (m *Manager) Module() string { return m.module }

// Begin starts a unit of work for the tenant of the resolution scope in ctx.
func (m *Manager) Begin(ctx context.Context) (*UnitOfWork, error) {
	id, err := tenant.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return m.BeginFor(ctx, id)
}

// BeginFor starts a unit of work for an explicit identity.
func (m *Manager) BeginFor(ctx context.Context, id tenant.Identity) (*UnitOfWork, error) {
	sess, err := m.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return newUnitOfWork(sess, m.catalog, m.log, m.metrics), nil
}

// Run begins a unit of work for the scope in ctx, calls fn and commits when
// fn succeeds. The unit of work is disposed on every path.
func Run(ctx context.Context, m *Manager, fn func(ctx context.Context, u *UnitOfWork) error) (int64, error) {
	u, err := m.Begin(ctx)
	if err != nil {
		return 0, err
	}
	return run(ctx, u, fn)
}

// RunFor is Run for an explicit identity.
func RunFor(ctx context.Context, m *Manager, id tenant.Identity, fn func(ctx context.Context, u *UnitOfWork) error) (int64, error) {
	u, err := m.BeginFor(ctx, id)
	if err != nil {
		return 0, err
	}
	return run(ctx, u, fn)
}

func run(ctx context.Context, u *UnitOfWork, fn func(ctx context.Context, u *UnitOfWork) error) (int64, error) {
	defer u.Dispose()

	if err := fn(ctx, u); err != nil {
		return 0, err
	}
	return u.Commit(ctx)
}
