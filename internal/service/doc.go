// Package service contains the core of the offline-first sync engine: the
// local apply engine, the conflict manager, the sync orchestrator and the
// autosync scheduler.
//
// The orchestrator ([Engine]) owns the durable pending queue and the sync
// watermark, and runs push+pull cycles against the remote API through
// [adapter.SyncAPI]. [Autosync] decides when those cycles run; [Applier]
// writes remote changes into the local store; [ConflictManager] holds
// divergences until the user resolves them.
package service
