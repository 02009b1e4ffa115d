// Package logger builds *slog.Logger instances with functional options and
// context extractors.
//
// New selects a text or JSON handler and wraps it in LogHandlerDecorator,
// which runs every registered ContextExtractor on each record. The tenant
// package provides an extractor that adds tenant_id once a request scope has
// resolved its tenant.
//
// Attribute helpers keep key names consistent across packages:
//
//	log.InfoContext(ctx, "unit of work committed",
//		logger.Module("products"),
//		logger.UnitOfWork(id),
//		logger.Duration(time.Since(start)),
//	)
//
// Error and TenantID return an empty attribute for nil values, so callers can
// pass them unconditionally.
package logger
