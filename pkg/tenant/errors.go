package tenant

import "errors"

var (
	// ErrTenantRequired is returned when an operation needs a tenant but none was resolved.
	ErrTenantRequired = errors.New("tenant required")

	// ErrTenantNotFound is returned when a tenant cannot be found in the registry.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when the tenant exists but has been deactivated.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned when a tenant signal carries a malformed value.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")
)
