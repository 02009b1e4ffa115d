package binder

import "net/http"

// Query binds URL query parameters into fields tagged `query:"name"`.
// Repeated parameters and comma-separated values both fill slice fields.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		values := r.URL.Query()
		return bindToStruct(v, "query", func(name string) []string {
			return values[name]
		}, ErrFailedToParseQuery)
	}
}
