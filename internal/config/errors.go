package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	// ErrInvalidConfig means the loaded values cannot produce a meaningful
	// pipeline run (missing database URL, non-positive solver parameters).
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig means a provider (file or env) failed to load.
	ErrLoadConfig = errors.New("load config failed")
)
