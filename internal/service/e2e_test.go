package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwallet/finwallet/internal/adapter"
	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/devserver"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

// In-memory store fakes, enough to run the engine end to end against the
// dev server without a database.

type memEntities struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemEntities() *memEntities {
	return &memEntities{data: make(map[string][]byte)}
}

func (m *memEntities) key(t models.EntityType, id string) string {
	return string(t) + "/" + id
}

func (m *memEntities) Upsert(_ context.Context, t models.EntityType, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.key(t, id)] = payload
	return nil
}

func (m *memEntities) Delete(_ context.Context, t models.EntityType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.key(t, id))
	return nil
}

func (m *memEntities) Get(_ context.Context, t models.EntityType, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.data[m.key(t, id)]
	if !ok {
		return nil, nil
	}
	return payload, nil
}

func (m *memEntities) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type memQueue struct {
	mu      sync.Mutex
	entries []models.PendingChange
}

func (m *memQueue) Append(_ context.Context, change models.PendingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, change)
	return nil
}

func (m *memQueue) List(_ context.Context) ([]models.PendingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.PendingChange{}, m.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memQueue) Remove(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memQueue) IncrementRetry(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bump := make(map[string]bool, len(ids))
	for _, id := range ids {
		bump[id] = true
	}
	for i := range m.entries {
		if bump[m.entries[i].ID] {
			m.entries[i].RetryCount++
		}
	}
	return nil
}

func (m *memQueue) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *memQueue) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

type memState struct {
	mu        sync.Mutex
	watermark int64
}

func (m *memState) LoadWatermark(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watermark, nil
}

func (m *memState) SaveWatermark(_ context.Context, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watermark = ts
	return nil
}

type e2eFixture struct {
	engine   *Engine
	entities *memEntities
	queue    *memQueue
	state    *devserver.State
	server   *httptest.Server
}

type e2eOptions struct {
	maxRetryCount int
	wrap          func(http.Handler) http.Handler
}

func newE2EFixture(t *testing.T) *e2eFixture {
	return newE2EFixtureWith(t, e2eOptions{maxRetryCount: 5})
}

func newE2EFixtureWith(t *testing.T, opts e2eOptions) *e2eFixture {
	t.Helper()

	state := devserver.NewState()
	handler := devserver.NewHandler(state, 2, logger.Nop())

	var root http.Handler = handler.Init()
	if opts.wrap != nil {
		root = opts.wrap(root)
	}
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	api, err := adapter.NewHTTPSyncAPI(
		config.Adapter{HTTPAddress: srv.URL, RequestTimeout: 5 * time.Second},
		config.App{Token: "dev-token"},
		logger.Nop(),
	)
	require.NoError(t, err)

	entities := newMemEntities()
	queue := &memQueue{}
	applier := NewApplyEngine(entities, logger.Nop())

	engine := NewEngine(EngineDeps{
		Queue:         queue,
		State:         &memState{},
		API:           api,
		Applier:       applier,
		Conflicts:     NewConflictManager(api, applier, logger.Nop()),
		Logger:        logger.Nop(),
		MaxRetryCount: opts.maxRetryCount,
	})

	return &e2eFixture{engine: engine, entities: entities, queue: queue, state: state, server: srv}
}

// ── Full round trips against the dev server ──────────────────────────────────

func TestEndToEnd_InitialPullBringsDownSeedData(t *testing.T) {
	f := newE2EFixture(t)
	f.state.Seed()
	ctx := context.Background()

	require.NoError(t, f.engine.Sync(ctx))

	// seed writes five entities; page size 2 forces pagination
	assert.Equal(t, 5, f.entities.size())
	assert.Positive(t, f.engine.Watermark())
	assert.Equal(t, models.StateIdle, f.engine.Status().State)
}

func TestEndToEnd_QueuedChangeReachesServerAndQueueDrains(t *testing.T) {
	f := newE2EFixture(t)
	ctx := context.Background()

	_, err := f.engine.QueueChange(ctx, models.EntityAccount, "acc-1", models.OperationCreate,
		json.RawMessage(`{"name":"Cash","balance":"50.00"}`))
	require.NoError(t, err)
	require.Equal(t, 1, f.engine.Status().PendingCount)

	require.NoError(t, f.engine.Sync(ctx))

	assert.Zero(t, f.engine.Status().PendingCount)
	snapshot := f.state.Snapshot()
	require.Len(t, snapshot.Changes, 1)
	assert.Equal(t, "acc-1", snapshot.Changes[0].EntityID)

	// the push watermark covers the batch, so the client's own change does
	// not echo back on the following pull
	assert.Zero(t, f.entities.size())
}

func TestEndToEnd_PushDoesNotHideAnotherDevicesChange(t *testing.T) {
	f := newE2EFixture(t)
	ctx := context.Background()

	// another device lands a change this client has never pulled
	foreign := f.state.Mutate(models.Change{
		EntityType: models.EntityGoal,
		EntityID:   "g-trip",
		Operation:  models.OperationCreate,
		Payload:    json.RawMessage(`{"name":"Trip","target":"1200"}`),
	})

	// the client pushes its own unrelated edit before pulling
	_, err := f.engine.QueueChange(ctx, models.EntityAccount, "acc-1", models.OperationCreate,
		json.RawMessage(`{"name":"Cash","balance":"50.00"}`))
	require.NoError(t, err)

	require.NoError(t, f.engine.Sync(ctx))

	// the push watermark must not jump past the foreign change; the pull in
	// the same cycle brings it down
	payload, err := f.entities.Get(ctx, models.EntityGoal, "g-trip")
	require.NoError(t, err)
	require.NotNil(t, payload, "the other device's change went missing")
	assert.JSONEq(t, string(foreign.Payload), string(payload))

	assert.Zero(t, f.engine.Status().PendingCount)
	assert.Positive(t, f.engine.Watermark())
}

// flakyPush fails the first n push requests the way a dropped connection
// would, and passes everything else through.
type flakyPush struct {
	inner http.Handler

	mu       sync.Mutex
	failures int
}

func (f *flakyPush) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	fail := f.failures > 0 && r.URL.Path == "/api/sync/push"
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	f.inner.ServeHTTP(w, r)
}

func TestEndToEnd_ExhaustedChangeStillDeliversAfterLocalResolution(t *testing.T) {
	f := newE2EFixtureWith(t, e2eOptions{
		maxRetryCount: 1,
		wrap:          func(h http.Handler) http.Handler { return &flakyPush{inner: h, failures: 1} },
	})
	ctx := context.Background()

	_, err := f.engine.QueueChange(ctx, models.EntityTransaction, "tx-9", models.OperationCreate,
		json.RawMessage(`{"amount":"-12.50","note":"coffee"}`))
	require.NoError(t, err)

	// the single allowed push attempt fails, so the change surfaces as a
	// locally detected conflict and leaves the queue
	require.Error(t, f.engine.Sync(ctx))
	conflicts := f.engine.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Zero(t, f.engine.Status().PendingCount)

	// keeping the local side re-queues the edit; the server never tracked
	// this conflict and answers 410 to the resolution call
	require.NoError(t, f.engine.ResolveConflict(ctx, conflicts[0].ID, models.ResolutionLocal, nil))
	assert.Equal(t, 1, f.engine.Status().PendingCount)

	require.NoError(t, f.engine.Sync(ctx))

	snapshot := f.state.Snapshot()
	require.Len(t, snapshot.Changes, 1)
	assert.Equal(t, "tx-9", snapshot.Changes[0].EntityID)
	assert.JSONEq(t, `{"amount":"-12.50","note":"coffee"}`, string(snapshot.Changes[0].Payload))
}

func TestEndToEnd_ConflictRoundTrip(t *testing.T) {
	f := newE2EFixture(t)
	ctx := context.Background()

	// both sides start from the same synced record
	f.state.Mutate(models.Change{
		EntityType: models.EntityBudget,
		EntityID:   "b-1",
		Operation:  models.OperationCreate,
		Payload:    json.RawMessage(`{"period":"monthly","limit":"450"}`),
	})
	require.NoError(t, f.engine.Sync(ctx))

	// server moves on while the client edits the same budget
	f.state.Mutate(models.Change{
		EntityType: models.EntityBudget,
		EntityID:   "b-1",
		Operation:  models.OperationUpdate,
		Payload:    json.RawMessage(`{"period":"monthly","limit":"400"}`),
	})
	_, err := f.engine.QueueChange(ctx, models.EntityBudget, "b-1", models.OperationUpdate,
		json.RawMessage(`{"period":"monthly","limit":"500"}`))
	require.NoError(t, err)

	require.NoError(t, f.engine.Sync(ctx))

	conflicts := f.engine.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "b-1", conflicts[0].EntityID)
	assert.Zero(t, f.engine.Status().PendingCount, "conflicted change is delivered, not requeued")

	// keep the local edit; both sides converge on it
	require.NoError(t, f.engine.ResolveConflict(ctx, conflicts[0].ID, models.ResolutionLocal, nil))
	assert.Empty(t, f.engine.Conflicts())

	require.NoError(t, f.engine.Sync(ctx))
	payload, err := f.entities.Get(ctx, models.EntityBudget, "b-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"period":"monthly","limit":"500"}`, string(payload))
}

func TestEndToEnd_ForceFullSyncRebuildsLocalState(t *testing.T) {
	f := newE2EFixture(t)
	f.state.Seed()
	ctx := context.Background()

	// local junk that a corrupted client might hold
	require.NoError(t, f.entities.Upsert(ctx, models.EntityAccount, "ghost", json.RawMessage(`{}`)))
	_, err := f.engine.QueueChange(ctx, models.EntityAccount, "ghost", models.OperationUpdate, json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, f.engine.ForceFullSync(ctx))

	assert.Zero(t, f.engine.Status().PendingCount, "full resync abandons queued edits")
	assert.Positive(t, f.engine.Watermark())

	// a follow-up incremental sync finds nothing new
	before := f.engine.Watermark()
	require.NoError(t, f.engine.Sync(ctx))
	assert.Equal(t, before, f.engine.Watermark())
}
