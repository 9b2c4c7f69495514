package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

type httpSyncAPI struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPSyncAPI constructs an HTTP/REST implementation of [SyncAPI].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying resty client with the resolved base URL and
// request timeout. The initial bearer token comes from appCfg.Token and can
// be rotated later via SetToken.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPSyncAPI(adapterCfg config.Adapter, appCfg config.App, logger *logger.Logger) (SyncAPI, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpSyncAPI{
		client: client,
		token:  strings.TrimSpace(appCfg.Token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpSyncAPI) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpSyncAPI) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpSyncAPI) SubjectID() (string, error) {
	tokenString := h.Token()
	if tokenString == "" {
		return "", errors.New("no token set")
	}

	// signature verification is the server's job; the client only needs the
	// subject for logging and dev tooling
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	return sub, nil
}

func (h *httpSyncAPI) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/push")
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("push request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}

	var out models.PushResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PushResponse{}, fmt.Errorf("decode push response: %w", err)
	}

	return out, nil
}

func (h *httpSyncAPI) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/pull")
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("pull request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var out models.PullResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}

	return out, nil
}

func (h *httpSyncAPI) ResolveConflict(ctx context.Context, req models.ResolveConflictRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/conflicts/resolve")
	if err != nil {
		return fmt.Errorf("resolve conflict request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpSyncAPI) FullSync(ctx context.Context) (models.FullSyncResponse, error) {
	resp, err := h.authedRequest(ctx).Post("/api/sync/full")
	if err != nil {
		return models.FullSyncResponse{}, fmt.Errorf("full sync request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FullSyncResponse{}, err
	}

	var out models.FullSyncResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.FullSyncResponse{}, fmt.Errorf("decode full sync response: %w", err)
	}

	return out, nil
}

func (h *httpSyncAPI) Ping(ctx context.Context) bool {
	resp, err := h.client.R().SetContext(ctx).Get("/ping")
	if err != nil {
		return false
	}
	// any HTTP answer means the endpoint is reachable
	return resp.StatusCode() < 500
}

func (h *httpSyncAPI) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
