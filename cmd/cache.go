package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSettings reads one backend and its connection string without the full setup,
// so store maintenance works even when the service settings are invalid.
func storeSettings(backendKey, connKey string) (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if raw := viper.GetString(backendKey); raw != "" {
		backend = schema.DatabaseBackend(strings.ToLower(raw))
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid %s '%s'. must be sqlite, mysql, postgresql, none", backendKey, backend)
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// sqlitePath resolves the file a SQLite store lives in.
func sqlitePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheSetup loads minimal configuration needed for cache operations.
func cacheSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("cache-backend", "cache-db-connect")
	if err != nil {
		return err
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup, so they never need the service.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
	Long: `Manage the cache of analysis results.

CodeSage caches each analysis by file name and content for a week, so
analyzing an unchanged file again does not reach the service.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  codesage cache status

  # Clear cache after the service was upgraded
  codesage cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	Long: `Delete all cached analysis results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  codesage cache clear

  # Clear MySQL cache (set connection string via env variable)
  CODESAGE_CACHE_BACKEND=mysql CODESAGE_CACHE_DB_CONNECT="..." codesage cache clear`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		path := sqlitePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry count, newest and oldest entry and size of the analysis cache.

Examples:
  codesage cache status`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cacheSetup(cmd, args); err != nil {
			return err
		}
		return iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", "")
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisCache()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("cache is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
