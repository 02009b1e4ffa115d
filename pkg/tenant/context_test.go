package tenant_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestIdentityFromContext(t *testing.T) {
	t.Parallel()

	t.Run("no scope is unresolved", func(t *testing.T) {
		t.Parallel()

		identity, err := tenant.IdentityFromContext(context.Background())
		require.NoError(t, err)
		assert.False(t, identity.IsResolved())

		_, ok := tenant.ResolverFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("resolves through scope", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/?tenantId=3", nil)
		ctx := tenant.WithResolver(context.Background(), tenant.NewRequestResolver(req))

		identity, err := tenant.IdentityFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.Resolved(3), identity)
	})

	t.Run("explicit scope", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithExplicit(context.Background(), 9)

		identity, err := tenant.IdentityFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.Resolved(9), identity)
	})

	t.Run("new scope shadows the parent", func(t *testing.T) {
		t.Parallel()

		parent := tenant.WithExplicit(context.Background(), 9)
		child, res := tenant.NewScope(parent)

		identity, err := tenant.IdentityFromContext(child)
		require.NoError(t, err)
		assert.False(t, identity.IsResolved())

		res.SetExplicit(10)
		identity, err = tenant.IdentityFromContext(child)
		require.NoError(t, err)
		assert.Equal(t, tenant.Resolved(10), identity)

		identity, err = tenant.IdentityFromContext(parent)
		require.NoError(t, err)
		assert.Equal(t, tenant.Resolved(9), identity)
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	req := httptest.NewRequest("GET", "/?tenantId=3", nil)
	res := tenant.NewRequestResolver(req)
	ctx := tenant.WithResolver(context.Background(), res)

	// Not resolved yet: the extractor must not trigger resolution.
	_, ok = extract(ctx)
	assert.False(t, ok)
	assert.Equal(t, tenant.Unresolved(), res.Peek())

	_, err := res.Require(ctx)
	require.NoError(t, err)

	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, "3", attr.Value.String())
}
