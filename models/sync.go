package models

import "encoding/json"

// PushRequest carries every currently queued local change to the server in
// one batch, tagged with the client's watermark so the server can order the
// batch against its own history.
type PushRequest struct {
	Changes           []PendingChange `json:"changes"`
	LastSyncTimestamp int64           `json:"last_sync_timestamp"`
}

// PushResponse reports the outcome of a push batch.
type PushResponse struct {
	// ServerTimestamp is the server-assigned watermark covering this batch.
	ServerTimestamp int64 `json:"server_timestamp"`

	// AcknowledgedIDs lists the PendingChange ids the server accepted.
	// Only these may be removed from the local queue.
	AcknowledgedIDs []string `json:"acknowledged_ids"`

	// Conflicts lists entities where the server holds a concurrent edit.
	// Conflicting changes are still acknowledged; resolution is separate.
	Conflicts []SyncConflict `json:"conflicts,omitempty"`
}

// PullRequest asks for all server-side changes strictly newer than the
// client's watermark.
type PullRequest struct {
	LastSyncTimestamp int64 `json:"last_sync_timestamp"`
}

// PullResponse is one page of server-side changes in server-assigned order.
type PullResponse struct {
	Changes         []Change `json:"changes"`
	ServerTimestamp int64    `json:"server_timestamp"`
	HasMore         bool     `json:"has_more"`
}

// ResolveConflictRequest tells the server which side of a conflict won so
// that both ends converge.
type ResolveConflictRequest struct {
	ConflictID string          `json:"conflict_id"`
	Resolution Resolution      `json:"resolution"`
	MergedData json.RawMessage `json:"merged_data,omitempty"`
}

// FullSyncResponse is the server's complete current state, applied
// change-by-change when the client abandons incremental reconciliation.
type FullSyncResponse struct {
	Changes         []Change `json:"changes"`
	ServerTimestamp int64    `json:"server_timestamp"`
}
