package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// cacheCmd focused on artifact cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the on-disk artifact cache",
	Long: `Manage the cached climatology, time-series and mapping artifacts.

The cache directory holds one JSON artifact per climatology month set,
per time-series diagnostic and per mapping weight file. Artifacts are
self-describing; deleting one only costs a recompute on the next run.

Subcommands:
  status - Summarize artifacts by kind, size and age
  clear  - Remove all cached artifacts

Examples:
  # See what the cache holds
  climatol cache status /data/run01

  # Force a full recompute on the next run
  climatol cache clear /data/run01`,
}

// cacheStatusCmd summarizes the artifact cache.
var cacheStatusCmd = &cobra.Command{
	Use:   "status [base-dir]",
	Short: "Summarize cached artifacts by kind, size and age",
	Long: `Walk the cache directory and report artifact counts per kind, the
total size on disk and the age of the oldest and newest artifacts,
together with the provenance backend's connection state.

Examples:
  # Check the cache of a run directory
  climatol cache status /data/run01`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.ScanCache(afero.NewOsFs(), cfg.CacheDir)
		if err != nil {
			contract.LogFatal("Cannot scan cache", err)
		}

		var prov *schema.ProvenanceStatus
		if provStatus, err := drv.Prov.GetStatus(); err != nil {
			contract.LogWarn("Cannot read provenance status", err)
		} else {
			prov = &provStatus
		}

		if err := writer.WriteCacheStatus(status, prov, cfg); err != nil {
			contract.LogFatal("Cannot write cache status", err)
		}
	},
}

// cacheClearCmd removes all cached artifacts.
var cacheClearCmd = &cobra.Command{
	Use:   "clear [base-dir]",
	Short: "Remove all cached artifacts",
	Long: `Delete every cached climatology, time-series and mapping artifact.

The next analysis run recomputes everything from the model output.
Provenance records are kept; use the provenance subcommands to manage
those.

Examples:
  # Export provenance before a full reset
  climatol provenance export --output-file backup
  climatol cache clear /data/run01`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		for _, kind := range []string{iocache.KindClimatology, iocache.KindTimeSeries, iocache.KindMapping} {
			dir := filepath.Join(cfg.CacheDir, kind)
			if err := os.RemoveAll(dir); err != nil {
				contract.LogFatal("Cannot clear cache", err)
			}
		}
		fmt.Println("Cache cleared successfully.")
	},
}
