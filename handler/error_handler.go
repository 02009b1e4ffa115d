package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantdb/pkg/binder"
	"github.com/dmitrymomot/tenantdb/pkg/jwt"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

// ErrorMapping translates every error matching Target (errors.Is) into Response.
type ErrorMapping struct {
	Target   error
	Response HTTPError
}

// DefaultErrorMappings covers the tenant routing and persistence errors.
// Authorization-class tenant errors become 403, conflicts 409 and
// connectivity failures 503 so clients know the request may be retried.
var DefaultErrorMappings = []ErrorMapping{
	{tenant.ErrInvalidIdentifier, NewHTTPError(http.StatusBadRequest, "invalid_tenant_identifier")},
	{tenant.ErrTenantRequired, NewHTTPError(http.StatusForbidden, "tenant_required")},
	{tenant.ErrTenantNotFound, NewHTTPError(http.StatusForbidden, "tenant_not_found")},
	{tenant.ErrTenantInactive, NewHTTPError(http.StatusForbidden, "tenant_inactive")},
	{jwt.ErrInvalidToken, ErrUnauthorized},
	{jwt.ErrExpiredToken, ErrUnauthorized},
	{uow.ErrNotFound, ErrNotFound},
	{tenantdb.ErrPersistenceConflict, ErrConflict},
	{tenantdb.ErrPersistenceUnavailable, ErrServiceUnavailable},
	{binder.ErrUnsupportedMediaType, NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type")},
	{binder.ErrFailedToParseJSON, ErrBadRequest},
	{binder.ErrFailedToParsePath, ErrBadRequest},
	{binder.ErrFailedToParseQuery, ErrBadRequest},
}

// ErrorInfo contains classified error information.
type ErrorInfo struct {
	StatusCode int
	Key        string
	LogLevel   slog.Level
}

// ClassifyError resolves err against mappings. Validation errors and HTTPError
// values win over mappings; anything unmatched is an internal error.
func ClassifyError(err error, mappings []ErrorMapping) ErrorInfo {
	info := ErrorInfo{
		StatusCode: ErrInternalServerError.Code,
		Key:        ErrInternalServerError.Key,
	}

	var httpErr HTTPError
	switch {
	case validator.IsValidationError(err):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Key = "validation_error"
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Key = httpErr.Key
	default:
		for _, m := range mappings {
			if errors.Is(err, m.Target) {
				info.StatusCode = m.Response.Code
				info.Key = m.Response.Key
				break
			}
		}
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler creates a JSON error handler that classifies err with
// extra followed by DefaultErrorMappings, logs it and renders the error envelope.
func NewErrorHandler(log *slog.Logger, extra ...ErrorMapping) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	mappings := append(append([]ErrorMapping{}, extra...), DefaultErrorMappings...)

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := ClassifyError(err, mappings)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		detail := newErrorDetail(err, info)
		resp := JSONError(detail, WithJSONStatus(info.StatusCode))
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
