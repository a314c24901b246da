package cmd

import (
	"fmt"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// provStore is built by provenanceSetup for the provenance subcommands.
var provStore contract.ProvenanceStore

// provenanceSetup loads minimal configuration needed for provenance operations.
// This is used by commands that need store access without full shared setup.
func provenanceSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get provenance-related config values
	backendStr := viper.GetString("provenance-backend")
	connStr := viper.GetString("provenance-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	cfg.OutputFile = viper.GetString("output-file")
	cfg.ProvenanceBackend = backend
	cfg.ProvenanceDBConnect = connStr

	store, err := iocache.NewProvenanceStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize provenance: %w", err)
	}
	provStore = store

	return nil
}

// provenanceSetupWrapper wraps provenanceSetup to provide PreRunE for provenance commands.
func provenanceSetupWrapper(_ *cobra.Command, _ []string) error {
	return provenanceSetup()
}

// provenanceMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create tables,
// allowing migrations to run on a fresh database.
func provenanceMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("provenance-backend")
	connStr := viper.GetString("provenance-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.DefaultSQLitePath()
	}

	cfg.ProvenanceBackend = backend
	cfg.ProvenanceDBConnect = connStr

	return nil
}

// provenanceMigrateSetupWrapper wraps provenanceMigrateSetup to provide PreRunE for migrate command.
func provenanceMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return provenanceMigrateSetup()
}

// provenanceCmd focused on provenance data management.
//
// Note: Provenance subcommands use minimal initialization (provenanceSetup)
// instead of the full sharedSetup used by analysis commands. This avoids
// base-dir validation and cache setup for simple store operations.
var provenanceCmd = &cobra.Command{
	Use:   "provenance",
	Short: "Manage run tracking and exports",
	Long: `Manage the provenance store that records every analysis run.

When enabled, climatol tracks each run, storing:
- Run metadata (timestamp, stream, resolved year range, duration)
- Cache effectiveness (chunks computed vs. served from cache)
- The artifacts each run wrote or reused

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  climatol provenance status

  # Export for analysis in pandas/DuckDB
  climatol provenance export --output-file climatol-data`,
}

// provenanceStatusCmd shows provenance status.
var provenanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check provenance tracking status
  climatol provenance status`,
	PreRunE: provenanceSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := provStore.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get provenance status", err)
		}
		if err := writer.WriteCacheStatus(schema.CacheStatus{}, &status, cfg); err != nil {
			contract.LogFatal("Failed to write provenance status", err)
		}
	},
}

// provenanceExportCmd exports provenance data to Parquet files.
var provenanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored provenance data to Parquet format.

Exports two datasets:
- Runs - metadata about each analysis execution
- Artifacts - the cache artifacts each run wrote or reused

Requires: --output-file parameter

Examples:
  # Export all data
  climatol provenance export --output-file climatol-data

  # Use with DuckDB for analysis
  climatol provenance export --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.runs.parquet') LIMIT 10"`,
	PreRunE: provenanceSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteProvenanceExport(provStore, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export provenance data", err)
		}
	},
}

// provenanceMigrateCmd runs database migrations for the provenance store.
var provenanceMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the provenance store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  climatol provenance migrate

  # Rollback to initial state
  climatol provenance migrate --target-version 0`,
	PreRunE: provenanceMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateProvenance(cfg.ProvenanceBackend, cfg.ProvenanceDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
