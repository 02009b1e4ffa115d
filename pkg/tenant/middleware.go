package tenant

import (
	"net/http"
)

// Middleware creates HTTP middleware that opens a resolution scope for each
// request. Resolution itself is lazy: nothing is read until a component asks
// for the tenant.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := NewRequestResolver(r, opts...)
			next.ServeHTTP(w, r.WithContext(WithResolver(r.Context(), res)))
		})
	}
}

// RequireTenant creates middleware that rejects requests whose scope does not
// resolve to a tenant. It must run after Middleware.
func RequireTenant(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := ResolverFromContext(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrTenantRequired)
				return
			}
			if _, err := res.Require(r.Context()); err != nil {
				cfg.logger.WarnContext(r.Context(), "tenant resolution rejected request",
					"path", r.URL.Path,
					"error", err,
				)
				cfg.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
