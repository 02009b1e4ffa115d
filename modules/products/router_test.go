package products_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/modules/products"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func newServer(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(tenant.Middleware())
	r.Mount("/products", products.Router(e.svc, handler.NewErrorHandler(logger.Discard(), products.ErrorMappings...)))
	return r
}

type envelope struct {
	Data  json.RawMessage      `json:"data"`
	Meta  map[string]any       `json:"meta"`
	Error *handler.ErrorDetail `json:"error"`
}

func call(t *testing.T, h http.Handler, method, target string, tenantID tenant.ID, body string) (int, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if tenantID != 0 {
		req.Header.Set(tenant.DefaultHeaderName, tenantID.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestRouter(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	acme := e.addTenant(t, "acme", true)
	dormant := e.addTenant(t, "dormant", false)
	srv := newServer(e)

	var created products.Product

	t.Run("create", func(t *testing.T) {
		code, body := call(t, srv, http.MethodPost, "/products/", acme,
			`{"sku":"ANVIL-1","name":"Anvil","price_cents":4999,"stock":2}`)
		require.Equal(t, http.StatusCreated, code)
		require.NoError(t, json.Unmarshal(body.Data, &created))
		assert.Equal(t, "ANVIL-1", created.SKU)
	})

	t.Run("get", func(t *testing.T) {
		code, body := call(t, srv, http.MethodGet, "/products/"+created.ID.String(), acme, "")
		require.Equal(t, http.StatusOK, code)

		var got products.Product
		require.NoError(t, json.Unmarshal(body.Data, &got))
		assert.Equal(t, created, got)
	})

	t.Run("summary", func(t *testing.T) {
		code, body := call(t, srv, http.MethodGet, "/products/"+created.ID.String()+"/summary", acme, "")
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"id":"`+created.ID.String()+`","name":"Anvil"}`, string(body.Data))
	})

	t.Run("list with meta", func(t *testing.T) {
		code, body := call(t, srv, http.MethodGet, "/products/?low_stock=5", acme, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(1), body.Meta["count"])
	})

	t.Run("adjust stock", func(t *testing.T) {
		code, body := call(t, srv, http.MethodPatch, "/products/"+created.ID.String()+"/stock", acme, `{"delta":-2}`)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body.Data), `"stock":0`)

		code, body = call(t, srv, http.MethodPatch, "/products/"+created.ID.String()+"/stock", acme, `{"delta":-1}`)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "insufficient_stock", body.Error.Code)
	})

	t.Run("validation", func(t *testing.T) {
		code, body := call(t, srv, http.MethodPost, "/products/", acme, `{"sku":"","name":"x"}`)
		require.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, body.Error.Details, "sku")
	})

	t.Run("duplicate", func(t *testing.T) {
		code, body := call(t, srv, http.MethodPost, "/products/", acme, `{"sku":"ANVIL-1","name":"Again"}`)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "conflict", body.Error.Code)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := call(t, srv, http.MethodDelete, "/products/"+created.ID.String(), acme, "")
		assert.Equal(t, http.StatusNoContent, code)

		code, body := call(t, srv, http.MethodGet, "/products/"+created.ID.String(), acme, "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "not_found", body.Error.Code)
	})

	t.Run("tenant failures", func(t *testing.T) {
		code, body := call(t, srv, http.MethodGet, "/products/", 0, "")
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "tenant_required", body.Error.Code)

		code, body = call(t, srv, http.MethodGet, "/products/", dormant, "")
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "tenant_inactive", body.Error.Code)

		code, body = call(t, srv, http.MethodGet, "/products/", 999, "")
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "tenant_not_found", body.Error.Code)
	})

	t.Run("malformed ids", func(t *testing.T) {
		code, _ := call(t, srv, http.MethodGet, "/products/not-a-uuid", acme, "")
		assert.Equal(t, http.StatusBadRequest, code)

		req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
		req.Header.Set(tenant.DefaultHeaderName, "abc")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
