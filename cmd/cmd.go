// Package cmd defines the command-line interface for climatol.
package cmd

import (
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(boundsCmd)
	rootCmd.AddCommand(climatologyCmd)
	rootCmd.AddCommand(timeseriesCmd)
	rootCmd.AddCommand(remapCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(provenanceCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Add the provenance subcommands to the parent provenance command
	provenanceCmd.AddCommand(provenanceStatusCmd)
	provenanceCmd.AddCommand(provenanceExportCmd)
	provenanceCmd.AddCommand(provenanceMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("stream", contract.DefaultStream, "Model output stream to analyze")
	rootCmd.PersistentFlags().String("start", "0001-01-01", "Requested start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("end", "9999-12-31", "Requested end date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("calendar", string(schema.NoLeapCalendar), "Model calendar: noleap or gregorian")
	rootCmd.PersistentFlags().String("months", "ANN", "Comma-separated month sets (e.g. ANN,JFM,JAS)")
	rootCmd.PersistentFlags().String("variables", "", "Comma-separated variables to analyze")
	rootCmd.PersistentFlags().Int("years-per-update", contract.DefaultYearsPerCacheUpdate, "Calendar years per cache chunk")
	rootCmd.PersistentFlags().String("cache-dir", "", "Artifact cache directory (default <base-dir>/climatol_cache)")
	rootCmd.PersistentFlags().String("mapping-dir", "", "Mapping weight directory (default <cache-dir>/mapping)")
	rootCmd.PersistentFlags().String("mesh-name", "", "Mesh name recorded in mapping identities")
	rootCmd.PersistentFlags().String("remap-method", contract.DefaultRemapMethod, "Weight generation method: conserve or neareststod")
	rootCmd.PersistentFlags().String("comparison-grid", string(schema.LatLonGrid), "Comparison grid: latlon or polar")
	rootCmd.PersistentFlags().Float64("lat-res", contract.DefaultLatResolution, "Comparison grid latitude resolution in degrees")
	rootCmd.PersistentFlags().Float64("lon-res", contract.DefaultLonResolution, "Comparison grid longitude resolution in degrees")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", 4, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log per-chunk cache decisions")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("provenance-backend", string(schema.SQLiteBackend), "Provenance backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("provenance-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of timeseriesCmd to Viper
	timeseriesCmd.Flags().String("diag", "sst", "Diagnostic to compute: sst, ohc or seaice")
	timeseriesCmd.Flags().String("hemisphere", "north", "Hemisphere for the sea-ice diagnostic: north or south")
	if err := viper.BindPFlags(timeseriesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding timeseries flags", err)
	}

	// Bind all flags of remapCmd to Viper
	remapCmd.Flags().String("hemisphere", "north", "Hemisphere for polar comparison grids: north or south")
	if err := viper.BindPFlags(remapCmd.Flags()); err != nil {
		contract.LogFatal("Error binding remap flags", err)
	}

	// Bind all flags of provenanceMigrateCmd to Viper
	provenanceMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(provenanceMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding provenance migrate flags", err)
	}
}
