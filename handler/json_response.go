package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

// JSONResponse is the envelope for every JSON body: data on success, error otherwise.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta attaches metadata such as totals to the envelope.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON renders v as the data of the envelope with status 200.
// A JSONResponse value is rendered as is.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}
	if body, ok := v.(JSONResponse); ok {
		r.body = body
	} else {
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders an error envelope. err is either an *ErrorDetail
// (status 500 unless overridden) or an error classified with DefaultErrorMappings.
func JSONError(err any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}

	switch e := err.(type) {
	case *ErrorDetail:
		r.body.Error = e
	case error:
		r.body.Error = errorToDetail(e, &r.status)
	default:
		r.body.Error = &ErrorDetail{Code: ErrInternalServerError.Key, Message: http.StatusText(r.status)}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorToDetail converts err to an ErrorDetail using the default mappings and
// updates status accordingly.
func errorToDetail(err error, status *int) *ErrorDetail {
	info := ClassifyError(err, DefaultErrorMappings)
	*status = info.StatusCode
	return newErrorDetail(err, info)
}

// newErrorDetail builds the client-facing detail for a classified error.
// Only 400 responses echo the error text, which describes the client input.
func newErrorDetail(err error, info ErrorInfo) *ErrorDetail {
	detail := &ErrorDetail{
		Code:    info.Key,
		Message: http.StatusText(info.StatusCode),
	}

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		detail.Message = "validation failed"
		detail.Details = ve.Fields()
	} else if info.StatusCode == http.StatusBadRequest {
		detail.Message = err.Error()
	}

	return detail
}
