// Package cmd defines the command-line interface for codesage.
package cmd

import (
	"context"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(extensionsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)
	historyCmd.AddCommand(historyListCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the CodeSage analysis service")
	rootCmd.PersistentFlags().String("timeout", "", "Request timeout such as 30s or 2m (empty = no timeout)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Analysis cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Q&A and documentation history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of askCmd to Viper
	askCmd.Flags().String("language", "", "Question language (default: detected from the analysis)")
	askCmd.Flags().BoolP("interactive", "i", false, "Read questions from stdin until EOF or 'exit'")
	if err := viper.BindPFlags(askCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ask flags", err)
	}

	// Flags of docsCmd only steer where the result goes
	docsCmd.Flags().Bool("from-analysis", false, "Analyze the file first and document the analyzed code")
	docsCmd.Flags().Bool("stdout", false, "Render the documentation in the terminal instead of saving it")

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the browser UI listens on")
	serveCmd.Flags().Int("sessions", contract.DefaultSessionLimit, "Maximum number of browser sessions kept in memory")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

// newClient builds the service client from the validated config.
func newClient() contract.APIClient {
	return apiclient.NewClient(cfg.APIURL, cfg.Timeout)
}

// newSession creates a workspace backed by the configured stores and applies
// the service upload limit. A failed limit lookup keeps the default.
func newSession(ctx context.Context, client contract.APIClient) *core.Session {
	sess := core.NewSession("", client, iocache.Manager)
	if mb, ok := fetchMaxFileSizeMB(ctx, client); ok {
		sess.SetMaxFileSizeMB(mb)
	}
	return sess
}

// fetchMaxFileSizeMB asks the service for its upload limit.
func fetchMaxFileSizeMB(ctx context.Context, client contract.APIClient) (float64, bool) {
	ext, err := client.SupportedExtensions(ctx)
	if err != nil {
		contract.LogWarn("Could not fetch upload limits, using defaults", err)
		return 0, false
	}
	return ext.MaxFileSizeMB, ext.MaxFileSizeMB > 0
}
