package migrate

import "errors"

var (
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("migrations directory not found")
	ErrUnsupportedDriver       = errors.New("unsupported database driver")
	ErrNilDatabase             = errors.New("nil database handle")
)
