package tenantdb

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/tenantdb/pkg/registry"
)

// Schema identifies a persistence module. Implementations are empty marker
// types; Module returns the name of the module's schema inside every tenant
// database.
type Schema interface {
	Module() string
}

// TargetBuilder derives the module-specific target from the tenant's
// registry coordinates.
type TargetBuilder func(registry.Target) (registry.Target, error)

// ErrInvalidTarget is returned when a target cannot be adapted to a module.
var ErrInvalidTarget = errors.New("invalid tenant database target")

var moduleName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SchemaTarget confines postgres connections to the module's schema by
// setting search_path. SQLite tenants keep one file per tenant and are
// returned unchanged.
func SchemaTarget(s Schema) TargetBuilder {
	module := s.Module()
	return func(t registry.Target) (registry.Target, error) {
		switch t.Driver {
		case "pgx", "postgres":
		default:
			return t, nil
		}
		if !moduleName.MatchString(module) {
			return registry.Target{}, fmt.Errorf("%w: module name %q is not a schema identifier", ErrInvalidTarget, module)
		}

		dsn, err := withSearchPath(t.DSN, module)
		if err != nil {
			return registry.Target{}, errors.Join(ErrInvalidTarget, err)
		}
		if _, err := pgconn.ParseConfig(dsn); err != nil {
			return registry.Target{}, errors.Join(ErrInvalidTarget, err)
		}
		return registry.Target{Driver: t.Driver, DSN: dsn}, nil
	}
}

// IdentityTarget passes the registry target through untouched.
func IdentityTarget(t registry.Target) (registry.Target, error) {
	return t, nil
}

func withSearchPath(dsn, module string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("search_path", module)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return strings.TrimSpace(dsn) + " search_path=" + module, nil
}
