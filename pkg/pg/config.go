package pg

import "time"

// Config describes the connection pool to the tenant registry database.
type Config struct {
	ConnectionString  string        `env:"REGISTRY_DB_URL,required"`                        // ConnectionString is the postgres URL of the registry database.
	MaxOpenConns      int32         `env:"REGISTRY_DB_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns caps the pool size.
	MaxIdleConns      int32         `env:"REGISTRY_DB_MAX_IDLE_CONNS" envDefault:"2"`       // MaxIdleConns is the minimum number of warm connections.
	HealthCheckPeriod time.Duration `env:"REGISTRY_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"REGISTRY_DB_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is how long an idle connection is kept.
	MaxConnLifetime   time.Duration `env:"REGISTRY_DB_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum age of a pooled connection.

	RetryAttempts int           `env:"REGISTRY_DB_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of connection attempts on startup.
	RetryInterval time.Duration `env:"REGISTRY_DB_RETRY_INTERVAL" envDefault:"2s"` // RetryInterval is the base wait between attempts.
}
