package cmd

import (
	"time"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// remapCmd computes climatologies on the comparison grid.
var remapCmd = &cobra.Command{
	Use:   "remap [base-dir]",
	Short: "Remap climatologies onto a regular comparison grid",
	Long: `Compute the configured climatologies and remap them from the model's
unstructured mesh onto a regular latitude-longitude or polar grid.

The sparse remapping weights are persisted next to the cache and keyed
by the source mesh, the target grid and the method. Weights are rebuilt
in place when any of the three changes and reused otherwise.

Methods:
  conserve    - average of the source cells falling in each target cell
  neareststod - nearest source cell per target cell

Examples:
  # Annual mean temperature on a half-degree global grid
  climatol remap /data/run01 --variables timeMonthly_avg_activeTracers_temperature

  # Winter sea-ice concentration on a northern polar grid
  climatol remap /data/run01 --months JFM --comparison-grid polar --hemisphere north \
    --variables timeMonthly_avg_iceAreaCell`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		hemisphere := viper.GetString("hemisphere")

		results, bounds, err := drv.RunRemappedClimatologies(hemisphere)
		if err != nil {
			contract.LogFatal("Cannot remap climatologies", err)
		}
		for _, r := range results {
			if err := writer.WriteClimatology(r.Dataset, r.MonthSet, bounds, r.Reused, cfg, time.Since(start)); err != nil {
				contract.LogFatal("Cannot write remapped climatology", err)
			}
		}
	},
}
