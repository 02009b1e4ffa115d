package tenantdb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Factory creates sessions for the module identified by S. It holds no
// per-tenant state and is safe for concurrent use.
type Factory[S Schema] struct {
	reader  registry.Reader
	build   TargetBuilder
	open    Opener
	log     *slog.Logger
	metrics *Metrics
	module  string
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	open    Opener
	log     *slog.Logger
	metrics *Metrics
}

// WithOpener replaces DefaultOpener.
func WithOpener(open Opener) FactoryOption {
	return func(c *factoryConfig) {
		if open != nil {
			c.open = open
		}
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(log *slog.Logger) FactoryOption {
	return func(c *factoryConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) FactoryOption {
	return func(c *factoryConfig) { c.metrics = m }
}

// NewFactory returns a factory for module S. A nil builder leaves registry
// targets untouched.
func NewFactory[S Schema](reader registry.Reader, build TargetBuilder, opts ...FactoryOption) *Factory[S] {
	cfg := &factoryConfig{
		open: DefaultOpener,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if build == nil {
		build = IdentityTarget
	}

	var schema S
	return &Factory[S]{
		reader:  reader,
		build:   build,
		open:    cfg.open,
		log:     cfg.log.With(logger.Component("tenantdb"), logger.Module(schema.Module())),
		metrics: cfg.metrics,
		module:  schema.Module(),
	}
}

// Module returns the name of the module this factory serves.
func (f *Factory[S]) Module() string { return f.module }

// Metrics returns the collectors the factory reports to, possibly nil.
func (f *Factory[S]) Metrics() *Metrics { return f.metrics }

// Logger returns the factory's module-scoped logger.
func (f *Factory[S]) Logger() *slog.Logger { return f.log }

// CreateSession opens a session on the tenant's database for module S.
//
// It fails with tenant.ErrTenantRequired for an unresolved identity,
// tenant.ErrTenantNotFound when the registry has no such tenant, and
// tenant.ErrTenantInactive for a deactivated one. No connection is attempted
// in any of those cases. Connection failures are joined with
// ErrPersistenceUnavailable.
func (f *Factory[S]) CreateSession(ctx context.Context, id tenant.Identity) (*Session[S], error) {
	start := time.Now()
	sess, err := f.createSession(ctx, id)
	f.metrics.sessionOpened(f.module, resultOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	f.log.DebugContext(ctx, "tenant session opened",
		logger.TenantID(sess.tenantID),
		logger.Duration(time.Since(start)),
	)
	return sess, nil
}

func (f *Factory[S]) createSession(ctx context.Context, id tenant.Identity) (*Session[S], error) {
	tid, ok := id.ID()
	if !ok {
		return nil, tenant.ErrTenantRequired
	}

	t, err := f.reader.FindByID(ctx, tid)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, err
		}
		return nil, Classify(err)
	}
	if !t.Active {
		return nil, tenant.ErrTenantInactive
	}

	target, err := f.build(t.Target)
	if err != nil {
		return nil, err
	}

	db, err := f.open(ctx, target)
	if err != nil {
		f.log.WarnContext(ctx, "tenant database unreachable",
			logger.TenantID(tid),
			logger.Error(err),
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrPersistenceUnavailable, err)
	}

	return &Session[S]{
		tenantID: tid,
		module:   f.module,
		db:       db,
		metrics:  f.metrics,
	}, nil
}

// SessionFromContext resolves the tenant from the resolution scope stored in
// ctx and opens a session for it.
func (f *Factory[S]) SessionFromContext(ctx context.Context) (*Session[S], error) {
	id, err := tenant.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return f.CreateSession(ctx, id)
}
