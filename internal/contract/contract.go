// Package contract provides interfaces and shared utilities for the
// climatol CLI's internal architecture.
package contract

import (
	"time"

	"github.com/polarcap/climatol/schema"
)

// Reducer is the caller-supplied transform invoked once per cache chunk
// by the time-series engine. It receives the time indices belonging to
// the current chunk and a firstCall flag that is true exactly once over
// the lifetime of a cache file, letting the reduction build one-time
// auxiliary quantities (a reference baseline, fixed masks) that are then
// persisted with the result instead of recomputed.
//
// The returned dataset must have exactly len(timeIndices) time points.
type Reducer interface {
	Reduce(timeIndices []int, firstCall bool) (*schema.Dataset, error)
}

// ReducerFunc adapts a plain function to the Reducer interface.
type ReducerFunc func(timeIndices []int, firstCall bool) (*schema.Dataset, error)

// Reduce calls f.
func (f ReducerFunc) Reduce(timeIndices []int, firstCall bool) (*schema.Dataset, error) {
	return f(timeIndices, firstCall)
}

// FileSpan is one discovered raw output file together with the year and
// month its filename names.
type FileSpan struct {
	Path  string
	Year  int
	Month int
}

// StreamLocator discovers raw model output files for a named stream.
// This allows the engine and commands to be tested without real model
// output on disk.
type StreamLocator interface {
	// FindFiles returns the files of the stream overlapping
	// [start, end], sorted by time. Fails with schema.ErrNoFilesFound
	// when nothing matches; the error is propagated, never swallowed.
	FindFiles(stream string, start, end schema.Date) ([]FileSpan, error)

	// RestartFile returns the first existing restart file among the
	// given candidate names. The fallback from one component's restart
	// to another's is a success path, so absence is reported with
	// ok=false rather than an error.
	RestartFile(candidates ...string) (path string, ok bool)
}

// RawReader loads variables from discovered files into a dataset.
type RawReader interface {
	ReadDataset(files []FileSpan, variables []string, cal schema.Calendar) (*schema.Dataset, error)
}

// ProvenanceStore records engine runs and the cache artifacts they
// produced or reused. This allows the store to be mocked for testing.
type ProvenanceStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, stream string, startYear, endYear int, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, chunksTotal, chunksReused int) error

	// RecordArtifact registers a cache artifact written or reused by a run.
	RecordArtifact(runID int64, kind, path, monthSet string, startYear, endYear int, variables []string) error

	// GetStatus returns status information about the store.
	GetStatus() (schema.ProvenanceStatus, error)

	// GetAllRuns retrieves all recorded runs.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllArtifacts retrieves all recorded artifacts.
	GetAllArtifacts() ([]schema.ArtifactRecord, error)

	// Close closes the underlying connection.
	Close() error
}
