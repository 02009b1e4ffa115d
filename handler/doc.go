// Package handler provides typed JSON HTTP handlers.
//
// A HandlerFunc receives a Context (the request context plus the writer) and a
// request struct filled by binders from pkg/binder, and returns a Response:
//
//	type GetProductRequest struct {
//		ID uuid.UUID `path:"id"`
//	}
//
//	func getProduct(ctx handler.Context, req GetProductRequest) handler.Response {
//		p, err := svc.Get(ctx, req.ID)
//		if err != nil {
//			return handler.Fail(err)
//		}
//		return handler.JSON(p)
//	}
//
//	r.Get("/products/{id}", handler.Wrap(getProduct,
//		handler.WithBinders[handler.Context, GetProductRequest](binder.Path()),
//		handler.WithErrorHandler[handler.Context, GetProductRequest](errorHandler),
//	))
//
// # Responses
//
// JSON and JSONError render the JSONResponse envelope ({"data": ...} or
// {"error": {"code": ..., "message": ...}}). Empty and EmptyWithStatus write a bare
// status code. Fail hands an error back to the wrapping ErrorHandler.
//
// # Errors
//
// NewErrorHandler classifies errors with DefaultErrorMappings: malformed tenant
// identifiers and binding failures are 400, unresolved, unknown or inactive
// tenants are 403, missing entities 404, persistence conflicts 409 and
// persistence outages 503. validator.ValidationErrors become 422 with per-field
// details, and HTTPError values carry their own status. Every error is logged
// with the request id.
package handler
