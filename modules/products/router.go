package products

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/pkg/binder"
)

// ErrorMappings are the module errors the HTTP layer should translate.
var ErrorMappings = []handler.ErrorMapping{
	{Target: ErrInsufficientStock, Response: handler.NewHTTPError(http.StatusUnprocessableEntity, "insufficient_stock")},
}

type listRequest struct {
	LowStock *int     `query:"low_stock"`
	SKUs     []string `query:"sku"`
}

type idRequest struct {
	ID uuid.UUID `path:"id"`
}

type adjustStockRequest struct {
	ID    uuid.UUID `path:"id" json:"-"`
	Delta int       `json:"delta"`
}

// Router mounts the product endpoints:
//
//	GET    /                 list (?low_stock=N, ?sku=A,B)
//	GET    /summaries        id and name of every product
//	POST   /                 create
//	GET    /{id}             one product
//	GET    /{id}/summary     id and name of one product
//	PATCH  /{id}/stock       adjust stock by delta
//	DELETE /{id}             remove
//
// The tenant is taken from the request scope, so the router must be mounted
// behind tenant.Middleware.
func Router(svc *Service, onError handler.ErrorHandler[handler.Context]) chi.Router {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(func(ctx handler.Context, req listRequest) handler.Response {
		var (
			list []Product
			err  error
		)
		switch {
		case req.LowStock != nil:
			list, err = svc.LowStock(ctx, *req.LowStock)
		case len(req.SKUs) > 0:
			list, err = svc.BySKUs(ctx, req.SKUs)
		default:
			list, err = svc.List(ctx)
		}
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"count": len(list)}))
	},
		handler.WithBinders[handler.Context, listRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, listRequest](onError),
	))

	r.Get("/summaries", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		list, err := svc.Summaries(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"count": len(list)}))
	},
		handler.WithErrorHandler[handler.Context, struct{}](onError),
	))

	r.Post("/", handler.Wrap(func(ctx handler.Context, req CreateInput) handler.Response {
		p, err := svc.Create(ctx, req)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(p, handler.WithJSONStatus(http.StatusCreated))
	},
		handler.WithBinders[handler.Context, CreateInput](binder.JSON()),
		handler.WithErrorHandler[handler.Context, CreateInput](onError),
	))

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Wrap(func(ctx handler.Context, req idRequest) handler.Response {
			p, err := svc.Get(ctx, req.ID)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(p)
		},
			handler.WithBinders[handler.Context, idRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, idRequest](onError),
		))

		r.Get("/summary", handler.Wrap(func(ctx handler.Context, req idRequest) handler.Response {
			p, err := svc.Summary(ctx, req.ID)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(p)
		},
			handler.WithBinders[handler.Context, idRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, idRequest](onError),
		))

		r.Patch("/stock", handler.Wrap(func(ctx handler.Context, req adjustStockRequest) handler.Response {
			p, err := svc.AdjustStock(ctx, req.ID, req.Delta)
			if err != nil {
				return handler.Fail(err)
			}
			return handler.JSON(p)
		},
			handler.WithBinders[handler.Context, adjustStockRequest](binder.Path(), binder.JSON()),
			handler.WithErrorHandler[handler.Context, adjustStockRequest](onError),
		))

		r.Delete("/", handler.Wrap(func(ctx handler.Context, req idRequest) handler.Response {
			if err := svc.Delete(ctx, req.ID); err != nil {
				return handler.Fail(err)
			}
			return handler.Empty()
		},
			handler.WithBinders[handler.Context, idRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, idRequest](onError),
		))
	})

	return r
}
