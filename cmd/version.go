package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionCmd prints build details and the service the client points at.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of codesage.",
	Long: `Display the client build and the configured service URL.

Include this output when reporting a problem. Use 'codesage health' to
see the version of the service itself.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("codesage client %s\n", version)
		cmd.Printf("  commit  %s\n", commit)
		cmd.Printf("  built   %s\n", date)
		cmd.Printf("  go      %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  service %s\n", viper.GetString("api-url"))
	},
}
