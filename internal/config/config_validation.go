package config

import "time"

// Engine timing defaults. Applied whenever the merged configuration leaves
// a field at its zero value.
const (
	DefaultSyncInterval   = 5 * time.Minute
	DefaultRecordDebounce = 2 * time.Second
	DefaultSettleDelay    = time.Second
	DefaultDebounceFloor  = 30 * time.Second
	DefaultMaxRetryCount  = 5
	DefaultRequestTimeout = 15 * time.Second
	DefaultPageSize       = 100
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if cfg.Sync.RecordDebounce <= 0 {
		cfg.Sync.RecordDebounce = DefaultRecordDebounce
	}
	if cfg.Sync.SettleDelay <= 0 {
		cfg.Sync.SettleDelay = DefaultSettleDelay
	}
	if cfg.Sync.DebounceFloor <= 0 {
		cfg.Sync.DebounceFloor = DefaultDebounceFloor
	}
	if cfg.Sync.MaxRetryCount == 0 {
		cfg.Sync.MaxRetryCount = DefaultMaxRetryCount
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.PageSize <= 0 {
		cfg.Server.PageSize = DefaultPageSize
	}
}

// validate checks that the final merged [StructuredConfig] satisfies the
// engine's invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.MaxRetryCount < 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
