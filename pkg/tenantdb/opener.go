package tenantdb

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
)

// Opener connects to a module target. The returned handle belongs to one
// session and is closed with it.
type Opener func(ctx context.Context, target registry.Target) (*sqlx.DB, error)

// DefaultOpener opens target through database/sql, limits the handle to a
// single connection and pings it so that an unreachable tenant fails here
// rather than on first use.
func DefaultOpener(ctx context.Context, target registry.Target) (*sqlx.DB, error) {
	db, err := sqlx.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return db, nil
}
