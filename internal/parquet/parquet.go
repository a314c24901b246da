// Package parquet provides data structures and functions for exporting
// climatol provenance data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/polarcap/climatol/schema"
)

// Run represents a single engine run with metadata. This struct maps to
// the climatol_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Stream is the model output stream the run consumed
	Stream string `parquet:"stream,snappy"`

	// StartYear and EndYear bound the resolved year window
	StartYear int32 `parquet:"start_year,snappy"`
	EndYear   int32 `parquet:"end_year,snappy"`

	// ChunksTotal and ChunksReused report how much the cache absorbed
	ChunksTotal  int32 `parquet:"chunks_total,snappy"`
	ChunksReused int32 `parquet:"chunks_reused,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Artifact represents one cache artifact registered by a run. This
// struct maps to the climatol_artifacts database table.
type Artifact struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// Kind is the artifact type: climatology, timeseries or mapping
	Kind string `parquet:"kind,snappy"`

	// Path is the artifact location relative to the cache directory
	Path string `parquet:"path,snappy"`

	// MonthSet is the season identity for climatology artifacts
	MonthSet string `parquet:"month_set,snappy"`

	// StartYear and EndYear bound the artifact's coverage
	StartYear int32 `parquet:"start_year,snappy"`
	EndYear   int32 `parquet:"end_year,snappy"`

	// Variables is the comma-separated variable list
	Variables string `parquet:"variables,snappy"`

	// CreatedAt is when the artifact was registered
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteArtifactsParquet writes a slice of Artifact structs to a Parquet file.
func WriteArtifactsParquet(data []Artifact, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Artifact struct tags
	writer := parquet.NewGenericWriter[Artifact](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.DurationMs,
			Stream:        record.Stream,
			StartYear:     record.StartYear,
			EndYear:       record.EndYear,
			ChunksTotal:   record.ChunksTotal,
			ChunksReused:  record.ChunksReused,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertArtifactRecords converts schema.ArtifactRecord to Artifact for Parquet export.
func ConvertArtifactRecords(records []schema.ArtifactRecord) []Artifact {
	result := make([]Artifact, len(records))
	for i, record := range records {
		result[i] = Artifact{
			RunID:     record.RunID,
			Kind:      record.Kind,
			Path:      record.Path,
			MonthSet:  record.MonthSet,
			StartYear: record.StartYear,
			EndYear:   record.EndYear,
			Variables: record.Variables,
			CreatedAt: record.CreatedAt,
		}
	}
	return result
}
