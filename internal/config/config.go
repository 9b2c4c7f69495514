package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// finwallet sync engine. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line
// flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the bearer token used
	// against the remote sync API and the application version.
	App App `envPrefix:"APP_"`

	// Adapter holds network address and timeout settings for the outbound
	// sync API client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds configuration for the local durable store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the timing and retry policy of the sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds settings for the development sync server binary.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Token is the bearer token attached to every sync API request.
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogFile is an optional path the daemon appends its logs to. When
	// empty, logs go to stdout.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Adapter holds settings for the outbound HTTP client that talks to the
// remote sync API.
type Adapter struct {
	// HTTPAddress is the base address of the sync API
	// (e.g. "https://sync.finwallet.app" or "localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the per-request timeout for sync API calls
	// (e.g. "15s"). Timeout policy lives here, not in the engine.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the local durable store.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite data source name, a file path in the common case
	// (e.g. "/var/lib/finwallet/sync.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds the timing and retry policy of the sync engine. Zero values
// are replaced with defaults during validation.
type Sync struct {
	// Interval is the periodic autosync interval while the app is
	// foregrounded. Default 5m.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// RecordDebounce is the quiet period after a local edit before an
	// automatic sync fires, so edit bursts coalesce. Default 2s.
	// Env: SYNC_RECORD_DEBOUNCE
	RecordDebounce time.Duration `env:"RECORD_DEBOUNCE"`

	// SettleDelay is the pause after connectivity returns before the first
	// automatic sync, letting the link stabilise. Default 1s.
	// Env: SYNC_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`

	// DebounceFloor is the minimum spacing between automatically triggered
	// cycles. Only a forced sync bypasses it. Default 30s.
	// Env: SYNC_DEBOUNCE_FLOOR
	DebounceFloor time.Duration `env:"DEBOUNCE_FLOOR"`

	// MaxRetryCount caps how many failed pushes a pending change survives
	// before it is surfaced as a conflict for explicit resolution.
	// Default 5.
	// Env: SYNC_MAX_RETRY_COUNT
	MaxRetryCount int `env:"MAX_RETRY_COUNT"`
}

// Server holds settings for the in-memory development sync server.
type Server struct {
	// HTTPAddress is the TCP address the dev server listens on,
	// in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// PageSize is the number of changes per pull page. Default 100.
	// Env: SERVER_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
