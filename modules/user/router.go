package user

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/modules/identity"
	"github.com/dmitrymomot/tenantdb/pkg/binder"
)

type localeRequest struct {
	Locale string `query:"locale"`
}

// Router mounts the profile endpoints for the authenticated account:
//
//	GET    /me        own profile, defaults when never saved
//	PUT    /me        replace own profile
//	DELETE /me        reset own profile
//	GET    /?locale=  profiles using a locale
func Router(svc *Service, onError handler.ErrorHandler[handler.Context]) chi.Router {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(func(ctx handler.Context, req localeRequest) handler.Response {
		if _, err := identity.CurrentAccountID(ctx); err != nil {
			return handler.Fail(err)
		}
		if req.Locale == "" {
			return handler.Fail(handler.ErrBadRequest)
		}
		list, err := svc.ByLocale(ctx, req.Locale)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"count": len(list)}))
	},
		handler.WithBinders[handler.Context, localeRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, localeRequest](onError),
	))

	r.Get("/me", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		id, err := identity.CurrentAccountID(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		p, err := svc.Get(ctx, id)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(p)
	},
		handler.WithErrorHandler[handler.Context, struct{}](onError),
	))

	r.Put("/me", handler.Wrap(func(ctx handler.Context, req UpdateInput) handler.Response {
		id, err := identity.CurrentAccountID(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		p, err := svc.Save(ctx, id, req)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(p)
	},
		handler.WithBinders[handler.Context, UpdateInput](binder.JSON()),
		handler.WithErrorHandler[handler.Context, UpdateInput](onError),
	))

	r.Delete("/me", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		id, err := identity.CurrentAccountID(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		if err := svc.Delete(ctx, id); err != nil {
			return handler.Fail(err)
		}
		return handler.Empty()
	},
		handler.WithErrorHandler[handler.Context, struct{}](onError),
	))

	return r
}
