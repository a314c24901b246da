package cmd

import (
	"github.com/polarcap/climatol/internal/contract"
	"github.com/spf13/cobra"
)

// boundsCmd resolves the usable year range of a stream.
var boundsCmd = &cobra.Command{
	Use:   "bounds [base-dir]",
	Short: "Resolve the complete calendar years covered by a stream",
	Long: `Scan the monthly output files of a stream and resolve the year range
an analysis can safely use.

The resolved range starts at the first complete January and ends at the
last complete December, clipped to the requested period. Partial years
at either end of a simulation are excluded so annual means are never
biased by missing months.

Examples:
  # Resolve bounds for the default monthly statistics stream
  climatol bounds /data/run01

  # Restrict to a requested window
  climatol bounds /data/run01 --start 0005-01-01 --end 0030-12-31`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		bounds, _, err := drv.ResolveBounds()
		if err != nil {
			contract.LogFatal("Cannot resolve bounds", err)
		}
		if err := writer.WriteBounds(bounds, cfg); err != nil {
			contract.LogFatal("Cannot write bounds", err)
		}
	},
}
