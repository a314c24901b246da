package cmd

import (
	"context"

	"github.com/polarcap/climatol/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [base-dir]",
	Short: "Start the climatol MCP server",
	Long:  `Launch an MCP server that allows AI agents to resolve bounds, run cached analyses and inspect the cache via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdio carries the protocol, so setup must not print there.
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(context.Background(), cfg, drv.Prov, log)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
