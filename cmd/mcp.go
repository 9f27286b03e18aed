package cmd

import (
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the CodeSage MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents analyze, question and document files via standard tools.`,
	// Setup stays quiet since stdio carries the protocol
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, newClient(), iocache.Manager)
	},
}
