package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"dario.cat/mergo"

	"github.com/finwallet/finwallet/internal/adapter"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

var (
	// ErrInvalidResolution is returned when the requested resolution is not
	// one of LOCAL, SERVER or MERGE, or when MERGE is requested without a
	// merged payload.
	ErrInvalidResolution = errors.New("invalid conflict resolution")
)

// ConflictManager holds the conflicts detected by push responses until the
// user resolves them. Conflicts live in memory only: a restart drops them,
// and the next push against unchanged server state detects them again.
type ConflictManager struct {
	mu        sync.RWMutex
	conflicts map[string]models.SyncConflict

	api     adapter.SyncAPI
	applier Applier
	logger  *logger.Logger

	// requeue appends a change to the pending queue. The engine wires it to
	// QueueChange so a winning edit the server never saw (a conflict detected
	// locally after exhausted pushes) gets delivered on the next push.
	requeue func(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (models.PendingChange, error)
}

func NewConflictManager(api adapter.SyncAPI, applier Applier, logger *logger.Logger) *ConflictManager {
	return &ConflictManager{
		conflicts: make(map[string]models.SyncConflict),
		api:       api,
		applier:   applier,
		logger:    logger,
	}
}

// Register stores newly detected conflicts. A conflict id already present
// is overwritten with the fresher detection.
func (m *ConflictManager) Register(conflicts ...models.SyncConflict) {
	if len(conflicts) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range conflicts {
		m.conflicts[c.ID] = c
	}
}

// List returns a snapshot of the unresolved conflicts.
func (m *ConflictManager) List() []models.SyncConflict {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SyncConflict, 0, len(m.conflicts))
	for _, c := range m.conflicts {
		out = append(out, c)
	}
	return out
}

// Count returns the number of unresolved conflicts.
func (m *ConflictManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conflicts)
}

// Clear drops every unresolved conflict without notifying the server. Used
// by full resync, which supersedes any pending divergence.
func (m *ConflictManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = make(map[string]models.SyncConflict)
}

// Resolve applies the chosen resolution for conflictID. The server is
// notified first; only after the server accepts (or reports the conflict
// already gone) is the winning change applied locally and the conflict
// dropped. Resolving an id that is not pending is a no-op.
func (m *ConflictManager) Resolve(ctx context.Context, conflictID string, resolution models.Resolution, mergedData json.RawMessage) error {
	log := m.logger.With().Str("func", "ConflictManager.Resolve").Str("conflict_id", conflictID).Logger()

	m.mu.RLock()
	conflict, ok := m.conflicts[conflictID]
	m.mu.RUnlock()
	if !ok {
		log.Debug().Msg("conflict not found, nothing to resolve")
		return nil
	}

	winner, payload, err := m.winningChange(conflict, resolution, mergedData)
	if err != nil {
		return err
	}

	req := models.ResolveConflictRequest{
		ConflictID: conflictID,
		Resolution: resolution,
		MergedData: payload,
	}
	serverAccepted := true
	if err := m.api.ResolveConflict(ctx, req); err != nil {
		// a conflict the server never tracked (detected locally) or no
		// longer knows about cannot be settled on its side; converge
		// locally and, if the local side won, push the edit again
		if !errors.Is(err, adapter.ErrNotFound) && !errors.Is(err, adapter.ErrConflictGone) {
			return fmt.Errorf("notify server of resolution: %w", err)
		}
		serverAccepted = false
		log.Debug().Msg("server does not know the conflict")
	}

	if err := m.applier.Apply(ctx, winner); err != nil {
		return fmt.Errorf("apply resolved change: %w", err)
	}

	if !serverAccepted && resolution != models.ResolutionServer && m.requeue != nil {
		if _, err := m.requeue(ctx, winner.EntityType, winner.EntityID, winner.Operation, winner.Payload); err != nil {
			return fmt.Errorf("requeue resolved change: %w", err)
		}
		log.Debug().Msg("winning change queued for the next push")
	}

	m.mu.Lock()
	delete(m.conflicts, conflictID)
	m.mu.Unlock()

	log.Info().Str("resolution", string(resolution)).Msg("conflict resolved")
	return nil
}

// winningChange derives the change to apply locally and the payload to send
// to the server for the given resolution.
func (m *ConflictManager) winningChange(conflict models.SyncConflict, resolution models.Resolution, mergedData json.RawMessage) (models.Change, json.RawMessage, error) {
	switch resolution {
	case models.ResolutionLocal:
		return conflict.LocalChange, conflict.LocalChange.Payload, nil

	case models.ResolutionServer:
		return conflict.ServerChange, nil, nil

	case models.ResolutionMerge:
		if len(mergedData) == 0 {
			// no explicit payload: merge the local edit onto the server's
			// version, local fields winning
			merged, err := mergePayloads(conflict.ServerChange.Payload, conflict.LocalChange.Payload)
			if err != nil {
				return models.Change{}, nil, fmt.Errorf("merge conflict payloads: %w", err)
			}
			mergedData = merged
		}
		winner := conflict.ServerChange
		if winner.EntityID == "" {
			// locally detected conflicts carry no server side
			winner = conflict.LocalChange
		}
		winner.Operation = models.OperationUpdate
		winner.Payload = mergedData
		return winner, mergedData, nil

	default:
		return models.Change{}, nil, fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}
}

// mergePayloads overlays the override JSON document onto base, override
// fields taking precedence. Nested objects are merged field by field.
func mergePayloads(base, override json.RawMessage) (json.RawMessage, error) {
	var dst map[string]any
	if err := json.Unmarshal(base, &dst); err != nil {
		return nil, fmt.Errorf("decode base payload: %w", err)
	}

	var src map[string]any
	if err := json.Unmarshal(override, &src); err != nil {
		return nil, fmt.Errorf("decode override payload: %w", err)
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, err
	}

	return json.Marshal(dst)
}
