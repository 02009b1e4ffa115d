package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	notNull := &pgconn.PgError{Code: "23502"}
	adminShutdown := &pgconn.PgError{Code: "57P01"}
	syntax := &pgconn.PgError{Code: "42601"}

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsDuplicateKeyError(unique))
		assert.False(t, pg.IsDuplicateKeyError(fk))
		assert.False(t, pg.IsDuplicateKeyError(nil))
	})

	t.Run("foreign key", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsForeignKeyViolationError(fk))
		assert.False(t, pg.IsForeignKeyViolationError(unique))
	})

	t.Run("integrity class", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsIntegrityConstraintError(unique))
		assert.True(t, pg.IsIntegrityConstraintError(notNull))
		assert.False(t, pg.IsIntegrityConstraintError(syntax))
		assert.False(t, pg.IsIntegrityConstraintError(errors.New("plain")))
	})

	t.Run("connection", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsConnectionError(adminShutdown))
		assert.True(t, pg.IsConnectionError(fmt.Errorf("dial: %w", &pgconn.ConnectError{})))
		assert.False(t, pg.IsConnectionError(syntax))
		assert.False(t, pg.IsConnectionError(nil))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
		assert.False(t, pg.IsNotFoundError(nil))
	})
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	require.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	require.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}
