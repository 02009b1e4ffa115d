package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestMiddleware_ConcurrentScopesDoNotLeak(t *testing.T) {
	t.Parallel()

	handler := tenant.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := r.Header.Get("X-Tenant-ID")
		res, _ := tenant.ResolverFromContext(r.Context())
		for range 10 {
			id, err := res.Require(r.Context())
			if assert.NoError(t, err) {
				assert.Equal(t, want, id.String())
			}
		}
	}))

	const numGoroutines = 64
	const numRequests = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for g := range numGoroutines {
		go func(g int) {
			defer wg.Done()

			for range numRequests {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("X-Tenant-ID", strconv.Itoa(g+1))
				handler.ServeHTTP(httptest.NewRecorder(), req)
			}
		}(g)
	}

	wg.Wait()
}

func TestResolver_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/?tenantId=3", nil)
	res := tenant.NewRequestResolver(req)

	const numGoroutines = 32

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()

			for range 100 {
				id, err := res.Require(t.Context())
				assert.NoError(t, err)
				assert.Equal(t, tenant.ID(3), id)
			}
		}()
	}

	wg.Wait()
}
