package models

// EngineState is the process-wide sync status. Exactly one value holds at a
// time; transitions are driven solely by the orchestrator.
type EngineState string

const (
	// StateIdle means no cycle is running and the last one succeeded.
	StateIdle EngineState = "idle"

	// StateSyncing means a push/pull cycle is in flight. At most one cycle
	// runs at a time; triggers arriving in this state are dropped.
	StateSyncing EngineState = "syncing"

	// StateError means the last cycle failed; the message travels in
	// [SyncStatus.ErrorMessage]. Retry is the scheduler's responsibility.
	StateError EngineState = "error"

	// StateOffline means connectivity is lost. Not an error: the engine
	// returns to idle when the network comes back.
	StateOffline EngineState = "offline"
)

// SyncStatus is a read-only snapshot of the engine for UI and callers.
type SyncStatus struct {
	State             EngineState `json:"state"`
	ErrorMessage      string      `json:"error_message,omitempty"`
	PendingCount      int         `json:"pending_count"`
	ConflictCount     int         `json:"conflict_count"`
	LastSyncTimestamp int64       `json:"last_sync_timestamp"`
	Online            bool        `json:"online"`
}
