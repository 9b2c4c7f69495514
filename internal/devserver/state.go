package devserver

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finwallet/finwallet/models"
)

// record is the server-side version of one entity.
type record struct {
	payload   json.RawMessage
	updatedAt int64
	deleted   bool
}

type recordKey struct {
	entityType models.EntityType
	entityID   string
}

// State is the in-memory store behind the dev sync server: current entity
// versions, an append-only change log, and the conflicts still waiting for
// a resolution.
type State struct {
	mu        sync.Mutex
	records   map[recordKey]record
	log       []models.Change
	conflicts map[string]models.SyncConflict
	lastTS    int64
}

func NewState() *State {
	return &State{
		records:   make(map[recordKey]record),
		conflicts: make(map[string]models.SyncConflict),
	}
}

// nextTimestamp returns a strictly increasing wall-clock timestamp in
// milliseconds. Callers hold s.mu.
func (s *State) nextTimestamp() int64 {
	ts := time.Now().UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts
	return ts
}

// ApplyPush ingests a batch of client changes. Every change is
// acknowledged; changes colliding with a newer server-side edit are also
// reported as conflicts and do not overwrite the server's version.
func (s *State) ApplyPush(req models.PushRequest) models.PushResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.PushResponse{}
	applied := make(map[int64]bool, len(req.Changes))

	for _, pc := range req.Changes {
		resp.AcknowledgedIDs = append(resp.AcknowledgedIDs, pc.ID)

		key := recordKey{pc.EntityType, pc.EntityID}
		existing, found := s.records[key]

		// a server edit the client has not seen yet, touching different
		// content, is a conflict
		if found && existing.updatedAt > req.LastSyncTimestamp && !bytes.Equal(existing.payload, pc.Payload) {
			conflict := models.SyncConflict{
				ID:          uuid.NewString(),
				EntityType:  pc.EntityType,
				EntityID:    pc.EntityID,
				LocalChange: pc.AsChange(),
				ServerChange: models.Change{
					EntityType: pc.EntityType,
					EntityID:   pc.EntityID,
					Operation:  models.OperationUpdate,
					Payload:    existing.payload,
					Timestamp:  existing.updatedAt,
				},
				DetectedAt: time.Now().UTC(),
			}
			s.conflicts[conflict.ID] = conflict
			resp.Conflicts = append(resp.Conflicts, conflict)
			continue
		}

		applied[s.apply(pc.AsChange()).Timestamp] = true
	}

	// The returned watermark must not cover log entries the client has never
	// pulled. Advance it only across the contiguous run of this batch's own
	// entries; the first foreign entry stops it so a later pull still picks
	// that entry up.
	resp.ServerTimestamp = req.LastSyncTimestamp
	for _, entry := range s.log {
		if entry.Timestamp <= resp.ServerTimestamp {
			continue
		}
		if !applied[entry.Timestamp] {
			break
		}
		resp.ServerTimestamp = entry.Timestamp
	}
	return resp
}

// apply writes one change into the record table and the change log,
// stamping it with a fresh server timestamp. Callers hold s.mu.
func (s *State) apply(change models.Change) models.Change {
	change.Timestamp = s.nextTimestamp()
	key := recordKey{change.EntityType, change.EntityID}

	switch change.Operation {
	case models.OperationDelete:
		s.records[key] = record{updatedAt: change.Timestamp, deleted: true}
	default:
		s.records[key] = record{payload: change.Payload, updatedAt: change.Timestamp}
	}

	s.log = append(s.log, change)
	return change
}

// Mutate applies a server-originated change, as if another device had
// synced it. Used by tests and the seed data.
func (s *State) Mutate(change models.Change) models.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(change)
}

// ChangesSince returns one page of logged changes strictly newer than
// since, plus whether more pages remain.
func (s *State) ChangesSince(since int64, pageSize int) models.PullResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	var page []models.Change
	hasMore := false
	for _, change := range s.log {
		if change.Timestamp <= since {
			continue
		}
		if len(page) == pageSize {
			hasMore = true
			break
		}
		page = append(page, change)
	}

	resp := models.PullResponse{Changes: page, HasMore: hasMore}
	if hasMore {
		resp.ServerTimestamp = page[len(page)-1].Timestamp
	} else {
		resp.ServerTimestamp = s.lastTS
	}
	return resp
}

// Snapshot returns the live records as CREATE changes, for a full resync.
func (s *State) Snapshot() models.FullSyncResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.FullSyncResponse{ServerTimestamp: s.lastTS}
	for key, rec := range s.records {
		if rec.deleted {
			continue
		}
		resp.Changes = append(resp.Changes, models.Change{
			EntityType: key.entityType,
			EntityID:   key.entityID,
			Operation:  models.OperationCreate,
			Payload:    rec.payload,
			Timestamp:  rec.updatedAt,
		})
	}
	return resp
}

// Resolve settles a pending conflict. The winning payload (the local or
// merged side; nil means the server side stands) is written through to the
// record table and the log so other devices pick it up.
func (s *State) Resolve(req models.ResolveConflictRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conflict, ok := s.conflicts[req.ConflictID]
	if !ok {
		return false
	}
	delete(s.conflicts, req.ConflictID)

	if req.Resolution == models.ResolutionServer || len(req.MergedData) == 0 {
		return true
	}

	s.apply(models.Change{
		EntityType: conflict.EntityType,
		EntityID:   conflict.EntityID,
		Operation:  models.OperationUpdate,
		Payload:    req.MergedData,
	})
	return true
}
