package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/modules/identity"
	"github.com/dmitrymomot/tenantdb/modules/products"
	"github.com/dmitrymomot/tenantdb/modules/user"
	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/jwt"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
	"github.com/dmitrymomot/tenantdb/pkg/ratelimiter"
	"github.com/dmitrymomot/tenantdb/pkg/redis"
	"github.com/dmitrymomot/tenantdb/pkg/registry"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
)

var errUnsupportedRegistryDriver = errors.New("unsupported registry driver")

// app holds the wired dependencies of the process.
type app struct {
	cfg appConfig
	log *slog.Logger
	reg *prometheus.Registry

	pool     *pgxpool.Pool // nil for a sqlite registry
	master   *sqlx.DB
	redis    *goredis.Client          // nil unless REDIS_URL is set
	attempts *ratelimiter.MemoryStore // nil when redis holds the budgets
	checks   []httpserver.Check
	reader   *registry.CachedReader
	tokens   *jwt.Service
	onError  handler.ErrorHandler[handler.Context]
	modules  []moduleMigrator
	products struct {
		factory *products.Factory
		manager *uow.Manager
		svc     *products.Service
	}
	identity *identity.Service
	user     *user.Service
}

// moduleMigrator applies one module's migrations to one tenant.
type moduleMigrator struct {
	name    string
	migrate func(ctx context.Context, id tenant.Identity) error
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{cfg: cfg, log: log, reg: reg}
	if err := a.openRegistry(ctx); err != nil {
		return nil, err
	}

	tokens, err := jwt.NewFromString(cfg.JWTSigningKey, jwt.WithIssuer(cfg.JWTIssuer), jwt.WithTTL(cfg.JWTTTL))
	if err != nil {
		a.close()
		return nil, err
	}
	a.tokens = tokens

	a.reader = registry.NewCachedReader(registry.NewStore(a.master),
		registry.WithCacheTTL(cfg.TenantCacheTTL),
		registry.WithCacheSize(cfg.TenantCacheSize),
	)

	opts := []tenantdb.FactoryOption{
		tenantdb.WithLogger(log),
		tenantdb.WithMetrics(tenantdb.NewMetrics(reg)),
	}

	a.products.factory = products.NewFactory(a.reader, opts...)
	a.products.manager = uow.NewManager(a.products.factory, products.NewCatalog())
	a.products.svc = products.NewService(a.products.manager, log)

	store, err := a.attemptStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:       cfg.LoginAttempts,
		RefillRate:     1,
		RefillInterval: cfg.LoginRefill,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	identityFactory := identity.NewFactory(a.reader, opts...)
	a.identity = identity.NewService(uow.NewManager(identityFactory, identity.NewCatalog()),
		identity.WithTokenIssuer(tokens),
		identity.WithAttemptLimiter(limiter),
		identity.WithLogger(log),
	)

	userFactory := user.NewFactory(a.reader, opts...)
	a.user = user.NewService(uow.NewManager(userFactory, user.NewCatalog()), log)

	a.modules = []moduleMigrator{
		{"products", func(ctx context.Context, id tenant.Identity) error { return products.Migrate(ctx, a.products.factory, id) }},
		{"identity", func(ctx context.Context, id tenant.Identity) error { return identity.Migrate(ctx, identityFactory, id) }},
		{"user", func(ctx context.Context, id tenant.Identity) error { return user.Migrate(ctx, userFactory, id) }},
	}

	a.onError = handler.NewErrorHandler(log,
		append(append([]handler.ErrorMapping{}, products.ErrorMappings...), identity.ErrorMappings...)...,
	)
	return a, nil
}

func (a *app) openRegistry(ctx context.Context) error {
	switch a.cfg.RegistryDriver {
	case "pgx", "postgres":
		pool, err := pg.Connect(ctx, a.cfg.Registry)
		if err != nil {
			return err
		}
		a.pool = pool
		a.master = pg.SQLX(pool)
		a.checks = append(a.checks, httpserver.Check{Name: "registry", Fn: pg.Healthcheck(pool)})
	case "sqlite":
		db, err := sqlx.Open("sqlite", a.cfg.Registry.ConnectionString)
		if err != nil {
			return err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return errors.Join(pg.ErrFailedToOpenDBConnection, err)
		}
		a.master = db
		a.checks = append(a.checks, httpserver.Check{Name: "registry", Fn: db.PingContext})
	default:
		return fmt.Errorf("%w: %q", errUnsupportedRegistryDriver, a.cfg.RegistryDriver)
	}
	return nil
}

// attemptStore picks where login attempt budgets live.
func (a *app) attemptStore(ctx context.Context) (ratelimiter.Store, error) {
	if !a.cfg.Redis.Enabled() {
		a.attempts = ratelimiter.NewMemoryStore()
		return a.attempts, nil
	}

	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	return ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("tenantd:login:")), nil
}

func (a *app) close() {
	if a.attempts != nil {
		a.attempts.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	if a.master != nil {
		if err := a.master.Close(); err != nil {
			a.log.Warn("failed to close registry handle", logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// migrateAll upgrades the registry and then every module of every active
// tenant, a few tenants at a time.
func (a *app) migrateAll(ctx context.Context) error {
	if err := registry.Migrate(ctx, a.master, a.log); err != nil {
		return err
	}

	tenants, err := a.reader.ListActive(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.MigrateConcurrency, 1))
	for _, t := range tenants {
		g.Go(func() error { return a.migrateTenant(ctx, t.ID) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.log.InfoContext(ctx, "tenant databases migrated",
		slog.Int("tenants", len(tenants)),
		logger.Duration(time.Since(start)),
	)
	return nil
}

func (a *app) migrateTenant(ctx context.Context, id tenant.ID) error {
	for _, m := range a.modules {
		if err := m.migrate(ctx, tenant.Resolved(id)); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP, requestid.Middleware, chimiddleware.Recoverer)

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(a.log, 2*time.Second, a.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{Registry: a.reg}))

	r.Group(func(r chi.Router) {
		r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Service: a.tokens, Logger: a.log}))
		r.Use(tenant.Middleware(
			tenant.WithClaimSource(jwt.TenantClaim(tenant.DefaultClaimName)),
			tenant.WithLogger(a.log),
		))

		r.Mount("/auth", identity.Router(a.identity, a.onError))
		r.Mount("/profiles", user.Router(a.user, a.onError))
		r.Mount("/products", products.Router(a.products.svc, a.onError))
	})

	if a.cfg.AdminAPIKey != "" {
		r.Mount("/admin", a.adminRoutes())
	}
	return r
}
