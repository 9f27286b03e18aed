package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySettings loads the history backend only, leaving stores closed.
func historySettings(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("history-backend", "history-db-connect")
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetup loads the history settings and opens the history store.
func historySetup(cmd *cobra.Command, args []string) error {
	if err := historySettings(cmd, args); err != nil {
		return err
	}
	if err := iocache.InitStores("", "", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historyStore returns the opened history store or exits when none is configured.
func historyStore() contract.HistoryStore {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		contract.LogFatal("History is unavailable", errors.New("history store is not configured. Set --history-backend"))
	}
	return store
}

// historyCmd focused on Q&A and documentation history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded questions, answers and documentation",
	Long: `Manage the history of answered questions and generated documentation.

When a history backend is set, CodeSage records:
- Every answered question with its code file, language and answer
- Every generated documentation with its file and language

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  list    - Print recorded entries
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Record history in SQLite
  codesage ask main.py "What does main do?" --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  codesage history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded history",
	Long: `Delete all recorded conversations and documentation.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  codesage history export --output-file backup
  codesage history clear`,
	PreRunE: historySettings,
	Run: func(_ *cobra.Command, _ []string) {
		path := sqlitePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, counts and time range of recorded conversations and documentation.

Examples:
  codesage history status --history-backend sqlite`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyListCmd prints every recorded entry.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recorded conversations and documentation",
	Long: `Print every recorded conversation and documentation as tables, or as JSON with --output json.

Examples:
  codesage history list --history-backend sqlite
  codesage history list --output json --output-file history.json`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := historySetup(cmd, args); err != nil {
			return err
		}
		return loadConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := historyStore()
		conversations, err := store.GetAllConversations()
		if err != nil {
			contract.LogFatal("Failed to read conversations", err)
		}
		docs, err := store.GetAllDocumentation()
		if err != nil {
			contract.LogFatal("Failed to read documentation", err)
		}
		if err := outwriter.NewOutWriter().WriteHistory(conversations, docs, cfg); err != nil {
			contract.LogFatal("Failed to write history", err)
		}
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to Parquet for BI tools and analytics",
	Long: `Export all recorded history to Parquet format.

Writes two files:
- <output-file>.conversations.parquet
- <output-file>.documentation.parquet

Requires: --output-file parameter

Examples:
  codesage history export --output-file history
  duckdb -c "SELECT language, count(*) FROM read_parquet('history.conversations.parquet') GROUP BY 1"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(historyStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
//
// It skips store initialization so migrations can run on a fresh database.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codesage history migrate --history-backend postgresql

  # Rollback to initial state
  codesage history migrate --target-version 0`,
	PreRunE: historySettings,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}
