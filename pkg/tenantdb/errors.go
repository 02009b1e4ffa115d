package tenantdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

var (
	// ErrPersistenceUnavailable marks connectivity failures. Callers may retry.
	ErrPersistenceUnavailable = errors.New("tenant persistence unavailable")

	// ErrPersistenceConflict marks constraint and concurrency violations.
	// Retrying the same write will fail again.
	ErrPersistenceConflict = errors.New("tenant persistence conflict")
)

// Classify joins err with ErrPersistenceConflict or ErrPersistenceUnavailable
// when the driver error belongs to one of those classes. Other errors,
// including context cancellation, are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPersistenceConflict), errors.Is(err, ErrPersistenceUnavailable):
		return err
	case isConflict(err):
		return errors.Join(ErrPersistenceConflict, err)
	case isUnavailable(err):
		return errors.Join(ErrPersistenceUnavailable, err)
	default:
		return err
	}
}

func isConflict(err error) bool {
	if pg.IsIntegrityConstraintError(err) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pg.IsConnectionError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR:
			return true
		}
	}
	return false
}
