package tenant

import (
	"strconv"
	"strings"
)

// ID is the stable identifier of a tenant in the registry.
type ID int64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a self-reported or claimed tenant identifier.
// Only positive decimal integers are accepted.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidIdentifier
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidIdentifier
	}
	return ID(v), nil
}

// Identity is the tenant reference for one logical unit of work.
// The zero value is unresolved.
type Identity struct {
	id       ID
	resolved bool
}

// Resolved returns an identity bound to the given tenant.
func Resolved(id ID) Identity {
	return Identity{id: id, resolved: true}
}

// Unresolved returns an identity that carries no tenant.
func Unresolved() Identity {
	return Identity{}
}

// ID returns the tenant id and whether the identity is resolved.
func (i Identity) ID() (ID, bool) {
	return i.id, i.resolved
}

// IsResolved reports whether the identity carries a tenant.
func (i Identity) IsResolved() bool {
	return i.resolved
}

func (i Identity) String() string {
	if !i.resolved {
		return "unresolved"
	}
	return i.id.String()
}
