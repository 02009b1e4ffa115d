// Package httpserver runs the tenantd HTTP listener with configured timeouts
// and graceful shutdown, and provides the liveness and readiness handlers.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns once ctx is cancelled and in-flight requests have drained, or
// the shutdown deadline has passed. Errors wrap ErrStart or ErrShutdown.
package httpserver
