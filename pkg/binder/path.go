package binder

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PathExtractor returns the value of a named route parameter.
type PathExtractor func(r *http.Request, name string) string

// Path binds route parameters into fields tagged `path:"name"`.
// Any type implementing encoding.TextUnmarshaler (uuid.UUID for one) is
// supported in addition to the basic kinds.
//
// Example:
//
//	type GetProductRequest struct {
//		ID uuid.UUID `path:"id"`
//	}
//
//	r.Get("/products/{id}", handler.Wrap(get,
//		handler.WithBinders[handler.Context, GetProductRequest](binder.Path()),
//	))
func Path() func(r *http.Request, v any) error {
	return PathWith(chi.URLParam)
}

// PathWith is Path with a custom parameter extractor, for routers other than chi.
func PathWith(extractor PathExtractor) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "path", func(name string) []string {
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		}, ErrFailedToParsePath)
	}
}
