// Package binder decodes HTTP requests into typed request structs.
//
// Each binder reads a single source and only touches fields carrying its tag,
// so several binders can populate one struct:
//
//	type UpdateStockRequest struct {
//		ID    uuid.UUID `path:"id"`
//		Delta int       `json:"delta"`
//	}
//
//	r.Patch("/products/{id}/stock", handler.Wrap(update,
//		handler.WithBinders[handler.Context, UpdateStockRequest](binder.Path(), binder.JSON()),
//	))
//
// Available binders:
//
//   - JSON: strict body decoding with a 1MB limit and string trimming
//   - Path: chi route parameters (`path` tag), or PathWith for other routers
//   - Query: URL query parameters (`query` tag)
//
// All failures wrap one of the package sentinels (ErrFailedToParseJSON,
// ErrFailedToParsePath, ErrFailedToParseQuery, ErrUnsupportedMediaType), which the
// handler package renders as 400 Bad Request. A binder that has nothing to read
// returns ErrBinderNotApplicable and is skipped.
package binder
