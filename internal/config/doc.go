// Package config loads the finwallet sync engine configuration from
// environment variables, command-line flags, and an optional JSON file.
//
// Sources are merged by a builder ([GetStructuredConfig]) in priority order
// (env first, then flags, then the JSON file) using mergo, so the first
// source to set a field wins. Timing fields left unset fall back to the
// defaults in config_validation.go.
package config
