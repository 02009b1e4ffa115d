package handler

import "net/http"

type failResponse struct {
	err error
}

// Render writes nothing and hands the error back to Wrap, which passes it to
// the configured ErrorHandler.
func (f failResponse) Render(http.ResponseWriter, *http.Request) error {
	return f.err
}

// Fail returns a Response that routes err through the wrapping ErrorHandler,
// so service errors are classified and logged in one place.
func Fail(err error) Response {
	if err == nil {
		err = ErrInternalServerError
	}
	return failResponse{err: err}
}
