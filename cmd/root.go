package cmd

import (
	"fmt"
	"strings"

	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/driver"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/internal/logx"
	"github.com/polarcap/climatol/internal/ncstore"
	"github.com/polarcap/climatol/internal/outwriter"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// Session-wide dependencies, built by sharedSetup.
var (
	log    *zap.SugaredLogger
	drv    *driver.Driver
	writer = outwriter.NewOutWriter()
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "climatol",
	Short:              "Incrementally cache climatologies and time series from climate model output.",
	Long:               `Climatol scans monthly model output, resolves the usable year range, and keeps climatology, time-series and remapping artifacts up to date so reruns only pay for the years they add.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".climatol") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("CLIMATOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("stream", contract.DefaultStream)
	viper.SetDefault("calendar", schema.NoLeapCalendar)
	viper.SetDefault("months", "ANN")
	viper.SetDefault("years-per-update", contract.DefaultYearsPerCacheUpdate)
	viper.SetDefault("remap-method", contract.DefaultRemapMethod)
	viper.SetDefault("comparison-grid", schema.LatLonGrid)
	viper.SetDefault("lat-res", contract.DefaultLatResolution)
	viper.SetDefault("lon-res", contract.DefaultLonResolution)
	viper.SetDefault("precision", 4)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("provenance-backend", schema.SQLiteBackend)
	viper.SetDefault("provenance-db-connect", "")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation and builds the session
// dependencies.
func sharedSetup(_ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.BaseDirStr = args[0]
	} else {
		input.BaseDirStr = "."
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Build the session dependencies with validated config.
	log = logx.New(cfg.Verbose)
	osFs := afero.NewOsFs()
	prov, err := iocache.NewProvenanceStore(cfg.ProvenanceBackend, cfg.ProvenanceDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize provenance store: %w", err)
	}
	drv = &driver.Driver{
		Cfg:     cfg,
		Engine:  core.NewEngine(iocache.NewArtifactStore(osFs), log),
		Locator: ncstore.NewLocator(osFs, cfg.BaseDir),
		Reader:  ncstore.NewReader(),
		Prov:    prov,
		Log:     log,
	}

	return nil
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".climatol")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
