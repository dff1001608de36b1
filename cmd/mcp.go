package cmd

import (
	"github.com/codesight/codesight/internal/iocache"
	"github.com/codesight/codesight/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the CodeSight MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents run repository health analysis through the analyze_repository tool.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager.GetArchiveStore())
	},
}
