package main

import (
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
	"github.com/dmitrymomot/tenantdb/pkg/redis"
)

// appConfig is the process configuration, read from the environment and an
// optional .env file.
type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	// RegistryDriver selects how the master registry is reached: "pgx"
	// pools through pgxpool, "sqlite" treats REGISTRY_DB_URL as a file path.
	RegistryDriver  string        `env:"REGISTRY_DB_DRIVER" envDefault:"pgx"`
	TenantCacheTTL  time.Duration `env:"TENANT_CACHE_TTL" envDefault:"30s"`
	TenantCacheSize int           `env:"TENANT_CACHE_SIZE" envDefault:"1024"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"tenantd"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"1h"`

	// LoginAttempts failed logins are allowed per tenant and email before
	// one more attempt opens every LoginRefill.
	LoginAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginRefill   time.Duration `env:"LOGIN_ATTEMPT_REFILL" envDefault:"1m"`

	MigrateOnStart     bool `env:"MIGRATE_ON_START" envDefault:"false"`
	MigrateConcurrency int  `env:"MIGRATE_CONCURRENCY" envDefault:"4"`
	ReportConcurrency  int  `env:"REPORT_CONCURRENCY" envDefault:"8"`

	// AdminAPIKey enables the /admin routes when set.
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	HTTP     httpserver.Config
	Registry pg.Config
	// Redis, when configured, shares login attempt budgets across replicas.
	Redis redis.Config
}
