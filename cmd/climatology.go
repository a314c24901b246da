package cmd

import (
	"time"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/spf13/cobra"
)

// climatologyCmd computes or reuses cached climatologies.
var climatologyCmd = &cobra.Command{
	Use:   "climatology [base-dir]",
	Short: "Compute seasonal climatologies, reusing cached results when they cover the request",
	Long: `Average the requested variables over each configured month set,
weighting months by their length in days.

Results are cached per month set. A cached climatology whose year range
contains the requested range is served without reading any model
output; a narrower or differently-configured cache entry is recomputed
and replaced.

Examples:
  # Annual mean surface temperature over all complete years
  climatol climatology /data/run01 --variables timeMonthly_avg_activeTracers_temperature

  # Winter and summer means over a fixed window
  climatol climatology /data/run01 --months JFM,JAS --start 0005-01-01 --end 0030-12-31 \
    --variables timeMonthly_avg_activeTracers_temperature`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		results, bounds, err := drv.RunClimatologies()
		if err != nil {
			contract.LogFatal("Cannot compute climatologies", err)
		}
		for _, r := range results {
			if err := writer.WriteClimatology(r.Dataset, r.MonthSet, bounds, r.Reused, cfg, time.Since(start)); err != nil {
				contract.LogFatal("Cannot write climatology", err)
			}
		}
	},
}
