package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUnknownEntityType is returned when an operation targets an entity
	// type outside the fixed set of synced collections.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrEntityNotFound is returned when a read targets an entity id that
	// does not exist in the local collection.
	ErrEntityNotFound = errors.New("entity not found")
)
