package tenantdb

import (
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Session is a connection to one tenant's database scoped to module S.
// It is owned by a single unit of work and must not be shared across
// requests.
type Session[S Schema] struct {
	tenantID tenant.ID
	module   string
	db       *sqlx.DB
	metrics  *Metrics

	closeOnce sync.Once
	closeErr  error
}

// TenantID returns the tenant the session is bound to.
func (s *Session[S]) TenantID() tenant.ID { return s.tenantID }

// Module returns the module name of S.
func (s *Session[S]) Module() string { return s.module }

// DB returns the underlying handle.
func (s *Session[S]) DB() *sqlx.DB { return s.db }

// Close releases the connection. Only the first call has an effect; later
// calls return the same result.
func (s *Session[S]) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
		s.metrics.sessionClosed(s.module)
	})
	return s.closeErr
}
