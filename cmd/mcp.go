package cmd

import (
	"github.com/huangsam/debrief/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the debrief MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query partner metrics,
themes and trends through standard tools.

The --input file and other flags become defaults; each tool call may override
the input, partners, limit and reporting options.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
