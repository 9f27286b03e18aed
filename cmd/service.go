package cmd

import (
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/outwriter"
	"github.com/spf13/cobra"
)

// extensionsCmd lists what the service accepts.
var extensionsCmd = &cobra.Command{
	Use:   "extensions",
	Short: "List the file extensions the service accepts.",
	Long: `Show the file extensions supported by the CodeSage service and its upload size limit.

Extensions the client does not upload are marked as such.

Examples:
  codesage extensions
  codesage extensions --output json`,
	Args:    cobra.NoArgs,
	PreRunE: clientSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ext, err := newClient().SupportedExtensions(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot fetch supported extensions", err)
		}
		if err := outwriter.NewOutWriter().WriteExtensions(ext, cfg); err != nil {
			contract.LogFatal("Cannot write extensions", err)
		}
	},
}

// healthCmd checks the service.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the CodeSage service is reachable and healthy.",
	Long: `Query the service health endpoint and print its status and version.

Exits non-zero when the service cannot be reached.

Examples:
  codesage health
  CODESAGE_API_URL=https://codesage.example.com/api/v1 codesage health`,
	Args:    cobra.NoArgs,
	PreRunE: clientSetup,
	Run: func(_ *cobra.Command, _ []string) {
		health, err := newClient().Health(rootCtx)
		if err != nil {
			contract.LogFatal("Service is unreachable", err)
		}
		if err := outwriter.NewOutWriter().WriteHealth(health, cfg); err != nil {
			contract.LogFatal("Cannot write health", err)
		}
	},
}
