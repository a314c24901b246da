package schema

import "errors"

// Error taxonomy for the engine. Callers match with errors.Is; everything
// else is wrapped context.
var (
	// ErrNoData indicates that no input data backs the requested range.
	// Fatal to the requesting analysis; no output is produced.
	ErrNoData = errors.New("no input data in requested range")

	// ErrNoFilesFound indicates stream discovery matched zero files.
	ErrNoFilesFound = errors.New("no files found for stream")

	// ErrGridMismatch indicates a remap was requested for a field whose
	// spatial shape does not match the source grid.
	ErrGridMismatch = errors.New("field shape does not match source grid")

	// ErrCacheCorrupt indicates a cache artifact was unreadable or
	// internally inconsistent. Recovered locally by recomputing.
	ErrCacheCorrupt = errors.New("cache artifact unreadable or inconsistent")

	// ErrCalendarMismatch indicates a cached calendar differs from the
	// requested one. Treated as a full cache miss, never surfaced.
	ErrCalendarMismatch = errors.New("cached calendar differs from requested")

	// ErrConfig indicates invalid or missing configuration, reported once
	// at startup.
	ErrConfig = errors.New("invalid configuration")
)
