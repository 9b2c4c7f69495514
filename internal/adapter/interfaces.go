// Package adapter provides the transport layer for communicating with the
// remote finwallet sync API.
//
// The primary abstraction is [SyncAPI], which decouples the sync engine from
// the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPSyncAPI]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/finwallet/finwallet/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/sync_api_mock.go -package=mock

// SyncAPI defines transport-agnostic communication with the remote sync
// endpoint. Implementations are responsible for serialisation, bearer token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// Each call is a single blocking round trip; timeout policy is configured on
// the implementation, not supplied per call.
type SyncAPI interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// SubjectID returns the subject claim of the stored bearer token,
	// identifying the syncing device/user. Returns an error when no token
	// is set or the token cannot be parsed.
	SubjectID() (string, error)

	// Push sends the batch of queued local changes tagged with the client
	// watermark. The response lists acknowledged change ids, detected
	// conflicts, and the new server timestamp.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull requests one page of server-side changes strictly newer than the
	// watermark in req. Server-assigned order within the page is
	// authoritative.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// ResolveConflict tells the server which side of a conflict won so both
	// ends converge.
	ResolveConflict(ctx context.Context, req models.ResolveConflictRequest) error

	// FullSync fetches the server's complete current state for recovery
	// from a corrupted or unrecoverable watermark.
	FullSync(ctx context.Context) (models.FullSyncResponse, error)

	// Ping reports whether the remote endpoint is reachable. Used as the
	// connectivity probe; never requires authentication.
	Ping(ctx context.Context) bool
}
