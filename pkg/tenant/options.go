package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

const (
	// DefaultClaimName is the authenticated claim carrying the tenant id.
	DefaultClaimName = "TenantId"

	// DefaultHeaderName is the inbound header read for unauthenticated callers.
	DefaultHeaderName = "X-Tenant-ID"

	// DefaultQueryParam is the query parameter read when no header is present.
	DefaultQueryParam = "tenantId"
)

// ClaimSource reports the tenant claim of the authenticated caller.
// authenticated is false for anonymous callers; claim is empty when the
// caller is authenticated but carries no tenant claim.
type ClaimSource func(ctx context.Context) (claim string, authenticated bool)

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	claims       ClaimSource
	headerName   string
	queryParam   string
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// Option configures resolvers and the middleware.
type Option func(*config)

// WithClaimSource sets how the authenticated tenant claim is read.
func WithClaimSource(src ClaimSource) Option {
	return func(c *config) {
		c.claims = src
	}
}

// WithHeaderName overrides the tenant header name.
func WithHeaderName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithQueryParam overrides the tenant query parameter name.
func WithQueryParam(name string) Option {
	return func(c *config) {
		if name != "" {
			c.queryParam = name
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		headerName:   DefaultHeaderName,
		queryParam:   DefaultQueryParam,
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, ErrTenantRequired):
		http.Error(w, "Tenant required", http.StatusForbidden)
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusForbidden)
	case errors.Is(err, ErrTenantInactive):
		http.Error(w, "Tenant is inactive", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
