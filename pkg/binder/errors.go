package binder

import "errors"

// Binding errors. Handlers map all of them to 400 Bad Request.
var (
	// ErrBinderNotApplicable is returned when a binder has nothing to read from
	// the request. handler.Wrap skips such binders silently.
	ErrBinderNotApplicable = errors.New("binder not applicable")

	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrFailedToParseQuery   = errors.New("failed to parse query parameters")
	ErrFailedToParsePath    = errors.New("failed to parse path parameters")
	ErrInvalidTarget        = errors.New("binding target must be a non-nil pointer to struct")
)
