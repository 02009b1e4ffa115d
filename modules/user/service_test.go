package user_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/modules/user"
	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

func TestService(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	acme := e.addTenant(t, "acme")
	globex := e.addTenant(t, "globex")
	ctx := scope(acme)
	account := uuid.New()

	t.Run("defaults before first save", func(t *testing.T) {
		p, err := e.svc.Get(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, &user.Profile{AccountID: account, Locale: "en", Timezone: "UTC"}, p)
	})

	t.Run("save creates then replaces", func(t *testing.T) {
		p, err := e.svc.Save(ctx, account, user.UpdateInput{FullName: " Ada   Lovelace ", Locale: "en-GB", Timezone: "Europe/London"})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", p.FullName)

		_, err = e.svc.Save(ctx, account, user.UpdateInput{FullName: "Ada", Locale: "fr"})
		require.NoError(t, err)

		got, err := e.svc.Get(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, &user.Profile{AccountID: account, FullName: "Ada", Locale: "fr", Timezone: "UTC"}, got)
	})

	t.Run("by locale", func(t *testing.T) {
		_, err := e.svc.Save(ctx, uuid.New(), user.UpdateInput{Locale: "de"})
		require.NoError(t, err)

		list, err := e.svc.ByLocale(ctx, "fr")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, account, list[0].AccountID)

		list, err = e.svc.ByLocale(scope(globex), "fr")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := e.svc.Save(ctx, account, user.UpdateInput{Locale: "english", Timezone: "Mars/Olympus"})
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.True(t, ve.Has("locale"))
		assert.True(t, ve.Has("timezone"))
	})

	t.Run("delete resets to defaults", func(t *testing.T) {
		require.NoError(t, e.svc.Delete(ctx, account))
		require.NoError(t, e.svc.Delete(ctx, account))

		p, err := e.svc.Get(ctx, account)
		require.NoError(t, err)
		assert.Empty(t, p.FullName)
	})
}
