package models

import "time"

// Resolution selects which side of a conflict wins.
type Resolution string

const (
	// ResolutionLocal re-asserts the local edit: the local change is
	// re-applied and the server is told to converge on it.
	ResolutionLocal Resolution = "LOCAL"

	// ResolutionServer discards the local edit in favour of the server's
	// concurrent change.
	ResolutionServer Resolution = "SERVER"

	// ResolutionMerge applies a caller-supplied payload layered onto the
	// server change's identity.
	ResolutionMerge Resolution = "MERGE"
)

// Valid reports whether r is one of LOCAL, SERVER or MERGE.
func (r Resolution) Valid() bool {
	return r == ResolutionLocal || r == ResolutionServer || r == ResolutionMerge
}

// SyncConflict records a divergence between a locally queued change and a
// concurrent server change to the same entity. It exists from the moment a
// push response reports it until a resolution is applied.
type SyncConflict struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	// LocalChange is the client's edit as it was pushed.
	LocalChange Change `json:"local_change"`

	// ServerChange is the server's concurrent edit to the same entity.
	ServerChange Change `json:"server_change"`

	DetectedAt time.Time `json:"detected_at"`
}
