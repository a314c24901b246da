package cmd

import (
	"time"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// timeseriesCmd computes or extends a cached scalar diagnostic.
var timeseriesCmd = &cobra.Command{
	Use:   "timeseries [base-dir]",
	Short: "Compute a scalar diagnostic time series, extending the cache incrementally",
	Long: `Reduce monthly model output to a scalar time series and keep the
result cached in calendar-year chunks.

A rerun over a longer simulation only computes the chunks past the end
of the cached series; everything already covered is served from the
cache file. The cache survives interruption because it is rewritten
after every completed chunk.

Diagnostics:
  sst     - area-weighted mean sea surface temperature
  ohc     - total ocean heat content
  seaice  - sea-ice area and volume per hemisphere

Examples:
  # Mean SST over the full simulation
  climatol timeseries /data/run01 --diag sst

  # Southern hemisphere sea ice, recomputing every 5 years per chunk
  climatol timeseries /data/run01 --diag seaice --hemisphere south --years-per-update 5`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		diagName := viper.GetString("diag")
		hemisphere := viper.GetString("hemisphere")

		result, stats, _, err := drv.RunTimeSeries(diagName, hemisphere)
		if err != nil {
			contract.LogFatal("Cannot compute time series", err)
		}
		if err := writer.WriteTimeSeries(result, stats, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write time series", err)
		}
	},
}
