// Command tenantd serves the products, identity and user modules over HTTP.
// Every request is routed to the database of the tenant it resolves to.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/tenantdb/pkg/config"
	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		logger.New().ErrorContext(ctx, "failed to load configuration", logger.Error(err))
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "tenantd"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(tenant.LoggerExtractor(), requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize", logger.Error(err))
		return err
	}
	defer a.close()

	if cfg.MigrateOnStart {
		if err := a.migrateAll(ctx); err != nil {
			log.ErrorContext(ctx, "startup migration failed", logger.Error(err))
			return err
		}
	}

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, a.routes()); err != nil {
		log.ErrorContext(ctx, "http server failed", logger.Error(err))
		return err
	}
	return nil
}
