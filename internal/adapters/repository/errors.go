package repository

import "errors"

// Sentinel kinds for store errors. These allow errors.Is/As from callers.
var (
	// ErrFetch marks a failed or malformed snapshot read. Callers abort
	// the affected report; no partial tables are emitted.
	ErrFetch = errors.New("snapshot fetch failed")

	// ErrConnect marks a failure to reach the data store at startup.
	ErrConnect = errors.New("store connection failed")
)
