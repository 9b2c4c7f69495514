package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

// Handler exposes the sync API over HTTP.
type Handler struct {
	state    *State
	pageSize int
	logger   *logger.Logger
}

func NewHandler(state *State, pageSize int, logger *logger.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Handler{
		state:    state,
		pageSize: pageSize,
		logger:   logger,
	}
}

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.requestLogging)

	// token issuing is open; everything else wants a bearer token
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/token", h.issueToken)
		r.Get("/ping", h.ping)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.requireToken)
		r.Post("/api/sync/push", h.push)
		r.Post("/api/sync/pull", h.pull)
		r.Post("/api/sync/conflicts/resolve", h.resolveConflict)
		r.Post("/api/sync/full", h.fullSync)
	})

	return router
}

func (h *Handler) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// issueToken hands out an unsigned-verification dev token carrying the
// requested device id as subject.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		WriteJSON(w, map[string]string{"error": "device_id is required"}, http.StatusBadRequest)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.DeviceID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
	})
	signed, err := token.SignedString([]byte("finwallet-dev")) // dev only
	if err != nil {
		WriteJSON(w, map[string]string{"error": "token signing failed"}, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, map[string]string{"token": signed}, http.StatusOK)
}

// requireToken only checks presence: the dev server trusts any bearer.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") == "" {
			WriteJSON(w, map[string]string{"error": "missing bearer token"}, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogging attaches a per-request logger to the context, so handlers
// pick it up with logger.FromRequest, and logs every handled request.
func (h *Handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := h.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		r = r.WithContext(reqLog.WithContext(r.Context()))

		next.ServeHTTP(w, r)
		reqLog.Debug().
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, map[string]string{"error": "malformed push request"}, http.StatusBadRequest)
		return
	}

	resp := h.state.ApplyPush(req)
	logger.FromRequest(r).Info().
		Str("func", "Handler.push").
		Int("changes", len(req.Changes)).
		Int("conflicts", len(resp.Conflicts)).
		Msg("push applied")

	WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	var req models.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, map[string]string{"error": "malformed pull request"}, http.StatusBadRequest)
		return
	}

	WriteJSON(w, h.state.ChangesSince(req.LastSyncTimestamp, h.pageSize), http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, map[string]string{"error": "malformed resolve request"}, http.StatusBadRequest)
		return
	}
	if !req.Resolution.Valid() {
		WriteJSON(w, map[string]string{"error": "unknown resolution"}, http.StatusBadRequest)
		return
	}

	if !h.state.Resolve(req) {
		WriteJSON(w, map[string]string{"error": "conflict not found"}, http.StatusGone)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fullSync(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, h.state.Snapshot(), http.StatusOK)
}

// WriteJSON serializes data and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return w.Write(jsonData)
}
