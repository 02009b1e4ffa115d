package uow

import "errors"

var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("entity not found")

	// ErrUnitOfWorkClosed is returned for any operation on a unit of work
	// that has been committed, rolled back or disposed.
	ErrUnitOfWorkClosed = errors.New("unit of work is closed")

	// ErrEntityNotRegistered is returned by Repo for types missing from the catalog.
	ErrEntityNotRegistered = errors.New("entity type not registered")

	// ErrInvalidEntity is returned when a nil entity is staged.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidProjection is returned when a projection selects a column the
	// entity does not map.
	ErrInvalidProjection = errors.New("invalid projection")
)
