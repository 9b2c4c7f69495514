package service

import (
	"context"
	"encoding/json"

	"github.com/finwallet/finwallet/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Applier applies a single remote change (or a conflict resolution) to the
// local store. Every apply is idempotent: replaying the same change leaves
// local state unchanged. Implementations never initiate network calls and
// never retain state between calls.
type Applier interface {
	Apply(ctx context.Context, change models.Change) error
}

// SyncEngine is the surface the application and UI layer program against.
type SyncEngine interface {
	// QueueChange records a local mutation as a durable pending change.
	// It never depends on network state.
	QueueChange(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (models.PendingChange, error)

	// Sync runs one push+pull cycle. At most one cycle runs at a time; a
	// call arriving mid-cycle is a no-op. The returned error mirrors the
	// Error state the engine enters on failure.
	Sync(ctx context.Context) error

	// ForceFullSync abandons incremental reconciliation: it discards the
	// pending queue, fetches the server's complete state, and re-derives
	// local state from it. Errors go directly to the caller.
	ForceFullSync(ctx context.Context) error

	// ResolveConflict applies the chosen resolution for a detected
	// conflict. Resolving an unknown conflict id is a no-op.
	ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution, mergedData json.RawMessage) error

	// Status returns a read-only snapshot of the engine.
	Status() models.SyncStatus

	// Conflicts lists the currently unresolved conflicts.
	Conflicts() []models.SyncConflict
}

// SyncDriver is the slice of the engine the autosync scheduler needs.
type SyncDriver interface {
	Sync(ctx context.Context) error
	Status() models.SyncStatus
}
