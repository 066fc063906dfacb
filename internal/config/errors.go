package config

import (
	"errors"
)

// Sentinel kinds for configuration failures, matched with errors.Is at
// startup. The service refuses to start on either; there is no partial
// configuration.
var (
	// ErrInvalidConfig marks a configuration that loaded but fails
	// validation (bad store backend, unordered risk thresholds, ...).
	ErrInvalidConfig = errors.New("invalid service configuration")

	// ErrLoadConfig marks a failure to read or parse a configuration
	// source (file or environment).
	ErrLoadConfig = errors.New("configuration load failed")
)
