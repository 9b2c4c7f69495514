package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a sync API address in format [host]:[port] or a full URL
//	-d local database DSN (SQLite file path)
//	-t bearer token for the sync API
//	-log-file file path the daemon appends logs to (empty means stdout)
//	-c/-config json file path with configs
//	-sync-interval periodic autosync interval (e.g., "5m")
//	-record-debounce quiet period after a local edit (e.g., "2s")
//	-settle-delay pause after connectivity returns (e.g., "1s")
//	-debounce-floor minimum spacing between automatic cycles (e.g., "30s")
//	-max-retry-count push retries before a change is surfaced as a conflict
//	-request-timeout per-request timeout for sync API calls (e.g., "15s")
//	-listen dev server listen address in format [host]:[port]
//	-page-size dev server pull page size
func ParseFlags() *StructuredConfig {
	var adapterAddress string
	var databaseDSN string
	var token string
	var logFile string
	var jsonConfigPath string
	var syncInterval time.Duration
	var recordDebounce time.Duration
	var settleDelay time.Duration
	var debounceFloor time.Duration
	var maxRetryCount int
	var requestTimeout time.Duration
	var listenAddress string
	var pageSize int

	flag.StringVar(&adapterAddress, "a", "", "Sync API address host:port or URL")
	flag.StringVar(&databaseDSN, "d", "", "Local database DSN")
	flag.StringVar(&token, "t", "", "Sync API bearer token")
	flag.StringVar(&logFile, "log-file", "", "Log file path (empty means stdout)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic autosync interval (e.g., 5m)")
	flag.DurationVar(&recordDebounce, "record-debounce", 0, "Quiet period after a local edit (e.g., 2s)")
	flag.DurationVar(&settleDelay, "settle-delay", 0, "Pause after connectivity returns (e.g., 1s)")
	flag.DurationVar(&debounceFloor, "debounce-floor", 0, "Minimum spacing between automatic cycles (e.g., 30s)")
	flag.IntVar(&maxRetryCount, "max-retry-count", 0, "Push retries before a change becomes a conflict")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	flag.StringVar(&listenAddress, "listen", "", "Dev server listen address host:port")
	flag.IntVar(&pageSize, "page-size", 0, "Dev server pull page size")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Token:   token,
			LogFile: logFile,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Sync: Sync{
			Interval:       syncInterval,
			RecordDebounce: recordDebounce,
			SettleDelay:    settleDelay,
			DebounceFloor:  debounceFloor,
			MaxRetryCount:  maxRetryCount,
		},
		Server: Server{
			HTTPAddress: listenAddress,
			PageSize:    pageSize,
		},
		JSONFilePath: jsonConfigPath,
	}
}
