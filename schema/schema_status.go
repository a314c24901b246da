package schema

import "time"

// CacheStatus holds status information about the on-disk artifact cache.
type CacheStatus struct {
	Directory      string    `json:"directory"`
	Climatologies  int       `json:"climatologies"`
	TimeSeries     int       `json:"timeseries"`
	MappingFiles   int       `json:"mapping_files"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	OldestArtifact time.Time `json:"oldest_artifact"`
	NewestArtifact time.Time `json:"newest_artifact"`
}

// ProvenanceStatus holds status information about the provenance store.
type ProvenanceStatus struct {
	Backend    string           `json:"backend"`
	Connected  bool             `json:"connected"`
	TotalRuns  int64            `json:"total_runs"`
	LastRunID  int64            `json:"last_run_id"`
	LastRun    time.Time        `json:"last_run"`
	OldestRun  time.Time        `json:"oldest_run"`
	TableSizes map[string]int64 `json:"table_sizes"`
}

// RunRecord is one engine invocation recorded in the provenance store.
type RunRecord struct {
	RunID        int64
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int32
	Stream       string
	StartYear    int32
	EndYear      int32
	ChunksTotal  int32
	ChunksReused int32
	ConfigParams *string
}

// ArtifactRecord is one cache artifact registered by a run.
type ArtifactRecord struct {
	RunID     int64
	Kind      string
	Path      string
	MonthSet  string
	StartYear int32
	EndYear   int32
	Variables string
	CreatedAt time.Time
}
