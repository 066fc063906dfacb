package service

import "errors"

// Sentinel kinds for report requests. These allow errors.Is from callers;
// per-record issues are never errors, they surface as report data.
var (
	// ErrInvalidRequest marks a bad team or period argument, rejected
	// before any fetch occurs.
	ErrInvalidRequest = errors.New("invalid report request")

	// ErrNotStarted marks a report request against a stopped service.
	ErrNotStarted = errors.New("service not started")
)
