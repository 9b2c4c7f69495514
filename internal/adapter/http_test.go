package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

// unsigned token with sub=device-7, enough for ParseUnverified
const testToken = "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJkZXZpY2UtNyJ9."

func newTestAPI(t *testing.T, serverURL string) *httpSyncAPI {
	t.Helper()
	adapterCfg := config.Adapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second}
	appCfg := config.App{Token: testToken}

	a, err := NewHTTPSyncAPI(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpSyncAPI)
}

// ── URL normalisation ───────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "full url", in: "https://sync.example.com/", want: "https://sync.example.com"},
		{name: "host port", in: "localhost:8080", want: "http://localhost:8080"},
		{name: "empty", in: "  ", wantErr: true},
		{name: "no host", in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ── token handling ──────────────────────────────────────────────────────────

func TestSubjectID_FromToken(t *testing.T) {
	a := newTestAPI(t, "http://localhost:1")

	sub, err := a.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, "device-7", sub)
}

func TestSubjectID_NoToken(t *testing.T) {
	a := newTestAPI(t, "http://localhost:1")
	a.SetToken("")

	_, err := a.SubjectID()
	assert.Error(t, err)
}

// ── Push ────────────────────────────────────────────────────────────────────

func TestPush_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync/push", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		var req models.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Changes, 1)
		assert.Equal(t, int64(100), req.LastSyncTimestamp)

		resp := models.PushResponse{
			ServerTimestamp: 200,
			AcknowledgedIDs: []string{req.Changes[0].ID},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	out, err := a.Push(context.Background(), models.PushRequest{
		Changes: []models.PendingChange{{
			ID:         "ch-1",
			EntityType: models.EntityAccount,
			EntityID:   "a1",
			Operation:  models.OperationCreate,
			Payload:    []byte(`{"name":"Checking"}`),
		}},
		LastSyncTimestamp: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(200), out.ServerTimestamp)
	assert.Equal(t, []string{"ch-1"}, out.AcknowledgedIDs)
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	_, err := a.Push(context.Background(), models.PushRequest{})

	assert.ErrorIs(t, err, ErrInternalServerError)
}

// ── Pull ────────────────────────────────────────────────────────────────────

func TestPull_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/pull", r.URL.Path)

		var req models.PullRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(150), req.LastSyncTimestamp)

		resp := models.PullResponse{
			Changes: []models.Change{{
				EntityType: models.EntityTransaction,
				EntityID:   "t1",
				Operation:  models.OperationUpdate,
				Payload:    []byte(`{"amount":"5.00"}`),
				Timestamp:  180,
			}},
			ServerTimestamp: 180,
			HasMore:         true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	out, err := a.Pull(context.Background(), models.PullRequest{LastSyncTimestamp: 150})

	require.NoError(t, err)
	require.Len(t, out.Changes, 1)
	assert.Equal(t, "t1", out.Changes[0].EntityID)
	assert.True(t, out.HasMore)
}

func TestPull_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	_, err := a.Pull(context.Background(), models.PullRequest{})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── ResolveConflict / FullSync ──────────────────────────────────────────────

func TestResolveConflict_Success(t *testing.T) {
	var got models.ResolveConflictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/conflicts/resolve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	err := a.ResolveConflict(context.Background(), models.ResolveConflictRequest{
		ConflictID: "cf-1",
		Resolution: models.ResolutionLocal,
	})

	require.NoError(t, err)
	assert.Equal(t, "cf-1", got.ConflictID)
	assert.Equal(t, models.ResolutionLocal, got.Resolution)
}

func TestFullSync_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/full", r.URL.Path)
		resp := models.FullSyncResponse{
			Changes: []models.Change{
				{EntityType: models.EntityAccount, EntityID: "a1", Operation: models.OperationCreate},
				{EntityType: models.EntityCategory, EntityID: "c1", Operation: models.OperationCreate},
			},
			ServerTimestamp: 500,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := newTestAPI(t, srv.URL)
	out, err := a.FullSync(context.Background())

	require.NoError(t, err)
	assert.Len(t, out.Changes, 2)
	assert.Equal(t, int64(500), out.ServerTimestamp)
}

// ── reachability probe ──────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	a := newTestAPI(t, srv.URL)

	assert.True(t, a.Ping(context.Background()))

	srv.Close()
	assert.False(t, a.Ping(context.Background()), "closed server is unreachable")
}
