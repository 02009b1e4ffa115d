package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/modules/products"
	"github.com/dmitrymomot/tenantdb/pkg/binder"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

const adminKeyHeader = "X-Admin-Key"

type tenantView struct {
	ID          tenant.ID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
}

type tenantRequest struct {
	ID tenant.ID `path:"id"`
}

func requireAdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(adminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// adminRoutes are operator endpoints working across tenants. They name the
// tenant explicitly instead of resolving it from the request.
//
//	GET  /tenants                active tenants
//	POST /tenants/{id}/migrate   refresh the cached record and migrate one tenant
//	GET  /reports/inventory      stock summary of every active tenant
func (a *app) adminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(requireAdminKey(a.cfg.AdminAPIKey))

	r.Get("/tenants", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		list, err := a.reader.ListActive(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		out := make([]tenantView, 0, len(list))
		for _, t := range list {
			out = append(out, tenantView{ID: t.ID, Name: t.Name, DisplayName: t.DisplayName})
		}
		return handler.JSON(out, handler.WithJSONMeta(map[string]any{"count": len(out)}))
	},
		handler.WithErrorHandler[handler.Context, struct{}](a.onError),
	))

	r.Post("/tenants/{id}/migrate", handler.Wrap(func(ctx handler.Context, req tenantRequest) handler.Response {
		a.reader.Invalidate(req.ID)
		if err := a.migrateTenant(ctx, req.ID); err != nil {
			return handler.Fail(err)
		}
		return handler.Empty()
	},
		handler.WithBinders[handler.Context, tenantRequest](binder.Path()),
		handler.WithErrorHandler[handler.Context, tenantRequest](a.onError),
	))

	r.Get("/reports/inventory", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		lines, err := products.InventoryReport(ctx, a.reader, a.products.manager, a.cfg.ReportConcurrency)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(lines)
	},
		handler.WithErrorHandler[handler.Context, struct{}](a.onError),
	))

	return r
}
