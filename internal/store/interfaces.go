package store

import (
	"context"

	"github.com/finwallet/finwallet/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// EntityRepository is the per-entity-type durable store the apply engine
// writes into. Upsert and Delete are idempotent: replaying a remote change
// leaves the store in the same state as applying it once.
type EntityRepository interface {
	// Upsert inserts or replaces the entity keyed by entityID inside the
	// collection for entityType. Create and update share this path so that
	// remote replays are safe.
	Upsert(ctx context.Context, entityType models.EntityType, entityID string, payload []byte) error

	// Delete removes the entity by id, tolerating absence.
	Delete(ctx context.Context, entityType models.EntityType, entityID string) error

	// Get returns the stored payload, or [ErrEntityNotFound].
	Get(ctx context.Context, entityType models.EntityType, entityID string) ([]byte, error)
}

// QueueRepository is the durable pending-change queue. Entries survive
// restarts and leave the queue only through Remove (server acknowledgement,
// or conversion to a conflict) or Clear (full resync).
type QueueRepository interface {
	// Append stores a new pending change at the tail of the queue.
	Append(ctx context.Context, change models.PendingChange) error

	// List returns all pending changes ordered by creation time.
	List(ctx context.Context) ([]models.PendingChange, error)

	// Remove deletes the entries with the given ids. Unknown ids are
	// ignored.
	Remove(ctx context.Context, ids []string) error

	// IncrementRetry bumps retry_count by one for each given id.
	IncrementRetry(ctx context.Context, ids []string) error

	// Count returns the number of queued changes.
	Count(ctx context.Context) (int, error)

	// Clear empties the queue. Used only by a full resync.
	Clear(ctx context.Context) error
}

// StateRepository persists the sync watermark across restarts.
type StateRepository interface {
	// LoadWatermark returns the last confirmed sync timestamp (0 when the
	// client has never synced).
	LoadWatermark(ctx context.Context) (int64, error)

	// SaveWatermark durably records ts as the new watermark.
	SaveWatermark(ctx context.Context, ts int64) error
}
