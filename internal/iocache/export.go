package iocache

import (
	"errors"
	"fmt"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/parquet"
)

// ExecuteProvenanceExport performs the actual export of provenance data to Parquet files.
func ExecuteProvenanceExport(store contract.ProvenanceStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get provenance status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no provenance data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total artifact records: %d\n", status.TableSizes[artifactsTable])

	// Retrieve all runs
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Retrieve all artifact records
	artifacts, err := store.GetAllArtifacts()
	if err != nil {
		return fmt.Errorf("failed to retrieve artifacts: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetArtifacts := parquet.ConvertArtifactRecords(artifacts)

	// Write runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write artifact records to Parquet
	artifactsFile := outputFile + ".artifacts.parquet"
	if err := parquet.WriteArtifactsParquet(parquetArtifacts, artifactsFile); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}
	fmt.Printf("Exported %d artifact records to: %s\n", len(parquetArtifacts), artifactsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
