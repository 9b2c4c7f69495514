package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finwallet/finwallet/internal/adapter"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/internal/store"
	"github.com/finwallet/finwallet/models"
)

var (
	// ErrInvalidChange is returned by QueueChange for an unknown entity
	// type or operation.
	ErrInvalidChange = errors.New("invalid change")
)

// connectivity is the slice of the network monitor the engine needs.
type connectivity interface {
	IsOnline() bool
	Subscribe(fn func(online bool)) func()
}

// EngineDeps bundles the collaborators of the sync engine.
type EngineDeps struct {
	Queue     store.QueueRepository
	State     store.StateRepository
	API       adapter.SyncAPI
	Applier   Applier
	Conflicts *ConflictManager
	Monitor   connectivity
	Logger    *logger.Logger

	// MaxRetryCount is the number of failed push attempts after which a
	// queued change is taken out of the queue and surfaced as a conflict.
	MaxRetryCount int
}

// Engine is the sync orchestrator: it owns the pending queue, the watermark
// and the engine state, and runs the push+pull cycle against the remote API.
//
// All exported methods are safe for concurrent use. At most one cycle runs
// at a time; Sync calls arriving mid-cycle return immediately.
type Engine struct {
	queue     store.QueueRepository
	state     store.StateRepository
	api       adapter.SyncAPI
	applier   Applier
	conflicts *ConflictManager
	monitor   connectivity
	logger    *logger.Logger

	maxRetryCount int

	mu            sync.Mutex
	syncing       bool
	engineState   models.EngineState
	errMessage    string
	watermark     int64
	pendingCount  int
	onLocalChange func()
}

func NewEngine(deps EngineDeps) *Engine {
	e := &Engine{
		queue:         deps.Queue,
		state:         deps.State,
		api:           deps.API,
		applier:       deps.Applier,
		conflicts:     deps.Conflicts,
		monitor:       deps.Monitor,
		logger:        deps.Logger,
		maxRetryCount: deps.MaxRetryCount,
		engineState:   models.StateIdle,
	}

	if e.monitor != nil {
		e.monitor.Subscribe(e.onConnectivityChange)
		if !e.monitor.IsOnline() {
			e.engineState = models.StateOffline
		}
	}

	if e.conflicts != nil {
		e.conflicts.requeue = e.QueueChange
	}

	return e
}

// Restore loads the durable watermark and queue depth into the engine's
// status cache. Call once at startup, before the scheduler starts.
func (e *Engine) Restore(ctx context.Context) error {
	watermark, err := e.state.LoadWatermark(ctx)
	if err != nil {
		return fmt.Errorf("load watermark: %w", err)
	}

	count, err := e.queue.Count(ctx)
	if err != nil {
		return fmt.Errorf("count pending changes: %w", err)
	}

	e.mu.Lock()
	e.watermark = watermark
	e.pendingCount = count
	e.mu.Unlock()

	e.logger.Info().
		Str("func", "Engine.Restore").
		Int64("watermark", watermark).
		Int("pending", count).
		Msg("sync state restored")
	return nil
}

// SetOnLocalChange registers a hook invoked after every successful
// QueueChange. The scheduler uses it to debounce an autosync trigger.
func (e *Engine) SetOnLocalChange(fn func()) {
	e.mu.Lock()
	e.onLocalChange = fn
	e.mu.Unlock()
}

// QueueChange records a local mutation as a durable pending change. It is
// purely local and never depends on network state.
func (e *Engine) QueueChange(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (models.PendingChange, error) {
	if !entityType.Valid() {
		return models.PendingChange{}, fmt.Errorf("%w: unknown entity type %q", ErrInvalidChange, entityType)
	}
	if !op.Valid() {
		return models.PendingChange{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidChange, op)
	}
	if entityID == "" {
		return models.PendingChange{}, fmt.Errorf("%w: empty entity id", ErrInvalidChange)
	}

	change := models.PendingChange{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.queue.Append(ctx, change); err != nil {
		return models.PendingChange{}, fmt.Errorf("append pending change: %w", err)
	}

	e.mu.Lock()
	e.pendingCount++
	hook := e.onLocalChange
	e.mu.Unlock()

	// no point arming an autosync while offline; the reconnect trigger
	// will cover the backlog
	if e.monitor != nil && !e.monitor.IsOnline() {
		hook = nil
	}

	e.logger.Debug().
		Str("func", "Engine.QueueChange").
		Str("change_id", change.ID).
		Str("entity_type", string(entityType)).
		Str("operation", string(op)).
		Msg("change queued")

	if hook != nil {
		hook()
	}
	return change, nil
}

// Sync runs one push+pull cycle. A call arriving while a cycle is already
// in flight, or while offline, is a no-op.
func (e *Engine) Sync(ctx context.Context) error {
	if e.monitor != nil && !e.monitor.IsOnline() {
		e.setState(models.StateOffline, "")
		return nil
	}

	if !e.beginCycle() {
		return nil
	}

	log := e.logger.With().Str("func", "Engine.Sync").Logger()
	log.Debug().Msg("sync cycle started")

	err := e.push(ctx)
	if err == nil {
		err = e.pull(ctx)
	}

	e.endCycle(err)
	if err != nil {
		log.Error().Err(err).Msg("sync cycle failed")
		return err
	}

	log.Info().Int64("watermark", e.Watermark()).Msg("sync cycle completed")
	return nil
}

// beginCycle flips the engine into the syncing state. It returns false when
// a cycle is already running.
func (e *Engine) beginCycle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing {
		return false
	}
	e.syncing = true
	e.engineState = models.StateSyncing
	e.errMessage = ""
	return true
}

func (e *Engine) endCycle(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncing = false
	if err != nil {
		e.engineState = models.StateError
		e.errMessage = err.Error()
		return
	}
	e.engineState = models.StateIdle
	e.errMessage = ""
}

// push sends the whole pending queue in one batch. An empty queue
// short-circuits without a network call. On transport failure every change
// in the batch gets its retry count bumped; changes that hit the retry cap
// are taken out of the queue and surfaced as conflicts.
func (e *Engine) push(ctx context.Context) error {
	pending, err := e.queue.List(ctx)
	if err != nil {
		return fmt.Errorf("list pending changes: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	req := models.PushRequest{
		Changes:           pending,
		LastSyncTimestamp: e.Watermark(),
	}

	resp, err := e.api.Push(ctx, req)
	if err != nil {
		if retryErr := e.recordPushFailure(ctx, pending); retryErr != nil {
			return fmt.Errorf("record push failure: %w (push: %w)", retryErr, err)
		}
		return fmt.Errorf("push batch: %w", err)
	}

	if len(resp.AcknowledgedIDs) > 0 {
		if err := e.queue.Remove(ctx, resp.AcknowledgedIDs); err != nil {
			return fmt.Errorf("remove acknowledged changes: %w", err)
		}
		e.addPending(-len(resp.AcknowledgedIDs))
	}

	if len(resp.Conflicts) > 0 {
		e.conflicts.Register(resp.Conflicts...)
		e.logger.Warn().
			Str("func", "Engine.push").
			Int("count", len(resp.Conflicts)).
			Msg("server reported conflicts")
	}

	return e.advanceWatermark(ctx, resp.ServerTimestamp)
}

// recordPushFailure bumps retry counts for a batch that never reached the
// server. Changes whose count reaches the cap are converted to conflicts so
// a permanently rejected edit cannot wedge the queue forever.
func (e *Engine) recordPushFailure(ctx context.Context, batch []models.PendingChange) error {
	ids := make([]string, len(batch))
	for i, pc := range batch {
		ids[i] = pc.ID
	}
	if err := e.queue.IncrementRetry(ctx, ids); err != nil {
		return fmt.Errorf("increment retry counts: %w", err)
	}

	var exhausted []string
	now := time.Now().UTC()
	for _, pc := range batch {
		if e.maxRetryCount <= 0 || pc.RetryCount+1 < e.maxRetryCount {
			continue
		}
		exhausted = append(exhausted, pc.ID)
		e.conflicts.Register(models.SyncConflict{
			ID:          pc.ID,
			EntityType:  pc.EntityType,
			EntityID:    pc.EntityID,
			LocalChange: pc.AsChange(),
			DetectedAt:  now,
		})
		e.logger.Warn().
			Str("func", "Engine.push").
			Str("change_id", pc.ID).
			Int("retry_count", pc.RetryCount+1).
			Msg("change exceeded retry cap, converted to conflict")
	}
	if len(exhausted) == 0 {
		return nil
	}

	if err := e.queue.Remove(ctx, exhausted); err != nil {
		return fmt.Errorf("remove exhausted changes: %w", err)
	}
	e.addPending(-len(exhausted))
	return nil
}

// pull drains the server's change feed page by page. The watermark advances
// after each fully applied page, so an interruption re-fetches at most one
// page.
func (e *Engine) pull(ctx context.Context) error {
	for {
		before := e.Watermark()

		resp, err := e.api.Pull(ctx, models.PullRequest{LastSyncTimestamp: before})
		if err != nil {
			return fmt.Errorf("pull changes: %w", err)
		}

		for _, change := range resp.Changes {
			if err := e.applier.Apply(ctx, change); err != nil {
				return fmt.Errorf("apply pulled change: %w", err)
			}
		}

		if err := e.advanceWatermark(ctx, resp.ServerTimestamp); err != nil {
			return err
		}

		if !resp.HasMore {
			return nil
		}

		// a server promising more pages without moving the watermark would
		// have this loop re-fetch the same page forever
		if e.Watermark() <= before {
			return fmt.Errorf("pull made no progress past watermark %d", before)
		}
	}
}

// ForceFullSync discards the incremental state and re-derives local data
// from the server's complete snapshot. Unlike Sync it reports errors
// directly and does not silently skip when a cycle is running.
func (e *Engine) ForceFullSync(ctx context.Context) error {
	if !e.beginCycle() {
		return errors.New("sync cycle already in flight")
	}

	err := e.fullSync(ctx)
	e.endCycle(err)
	return err
}

func (e *Engine) fullSync(ctx context.Context) error {
	log := e.logger.With().Str("func", "Engine.ForceFullSync").Logger()

	// the queue goes first: a full resync declares the server
	// authoritative, so unpushed local edits are abandoned
	if err := e.queue.Clear(ctx); err != nil {
		return fmt.Errorf("clear pending queue: %w", err)
	}
	e.mu.Lock()
	e.pendingCount = 0
	e.mu.Unlock()
	e.conflicts.Clear()

	resp, err := e.api.FullSync(ctx)
	if err != nil {
		return fmt.Errorf("fetch full state: %w", err)
	}

	for _, change := range resp.Changes {
		if err := e.applier.Apply(ctx, change); err != nil {
			return fmt.Errorf("apply snapshot change: %w", err)
		}
	}

	// the snapshot replaces history wholesale, so the watermark is set
	// unconditionally rather than advanced
	if err := e.state.SaveWatermark(ctx, resp.ServerTimestamp); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	e.mu.Lock()
	e.watermark = resp.ServerTimestamp
	e.mu.Unlock()

	log.Info().
		Int("changes", len(resp.Changes)).
		Int64("watermark", resp.ServerTimestamp).
		Msg("full resync completed")
	return nil
}

// ResolveConflict applies the chosen resolution for a detected conflict.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution, mergedData json.RawMessage) error {
	return e.conflicts.Resolve(ctx, conflictID, resolution, mergedData)
}

// Conflicts lists the currently unresolved conflicts.
func (e *Engine) Conflicts() []models.SyncConflict {
	return e.conflicts.List()
}

// Status returns a read-only snapshot of the engine.
func (e *Engine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	online := true
	if e.monitor != nil {
		online = e.monitor.IsOnline()
	}

	return models.SyncStatus{
		State:             e.engineState,
		ErrorMessage:      e.errMessage,
		PendingCount:      e.pendingCount,
		ConflictCount:     e.conflicts.Count(),
		LastSyncTimestamp: e.watermark,
		Online:            online,
	}
}

// Watermark returns the cached last confirmed sync timestamp.
func (e *Engine) Watermark() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.watermark
}

// advanceWatermark persists ts as the new watermark if it moves forward.
// The watermark never goes backwards; a stale or zero server timestamp is
// ignored.
func (e *Engine) advanceWatermark(ctx context.Context, ts int64) error {
	e.mu.Lock()
	current := e.watermark
	e.mu.Unlock()
	if ts <= current {
		return nil
	}

	if err := e.state.SaveWatermark(ctx, ts); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}

	e.mu.Lock()
	if ts > e.watermark {
		e.watermark = ts
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) addPending(delta int) {
	e.mu.Lock()
	e.pendingCount += delta
	if e.pendingCount < 0 {
		e.pendingCount = 0
	}
	e.mu.Unlock()
}

// onConnectivityChange flips the engine between offline and idle on network
// transitions. A running cycle keeps its state; its own outcome decides.
func (e *Engine) onConnectivityChange(online bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing {
		return
	}
	if !online {
		e.engineState = models.StateOffline
		return
	}
	if e.engineState == models.StateOffline {
		e.engineState = models.StateIdle
	}
}

func (e *Engine) setState(state models.EngineState, errMessage string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing {
		return
	}
	e.engineState = state
	e.errMessage = errMessage
}

var _ SyncEngine = (*Engine)(nil)
