package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/codesage/codesage/schema"
)

// Default values for configuration.
const (
	DefaultAPIURL       = "http://localhost:8000/api/v1"
	DefaultListenAddr   = ":3000"
	DefaultSessionLimit = 256
	MaxSessionLimit     = 100000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for all commands.
// This struct is the "final, validated" config.
type Config struct {
	APIURL  string
	Timeout time.Duration // 0 means no timeout

	Output     schema.OutputMode
	OutputFile string
	Width      int    // Terminal width override (0 = auto-detect)
	Language   string // Question language override (empty = detected)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ListenAddr   string
	SessionLimit int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	APIURL           string `mapstructure:"api-url"`
	Timeout          string `mapstructure:"timeout"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from askCmd.Flags() ---
	Language string `mapstructure:"language"`

	// --- Fields from serveCmd.Flags() ---
	Listen   string `mapstructure:"listen"`
	Sessions int    `mapstructure:"sessions"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := processAPIInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// NormalizeAPIURL validates a backend base URL and strips any trailing slash.
func NormalizeAPIURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultAPIURL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid api-url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid api-url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api-url %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// ParseTimeout parses a request timeout. Empty and "0" both mean no timeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q. Expected a duration like 30s or 2m: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout cannot be negative (received %s)", s)
	}
	return d, nil
}

// processAPIInputs handles the backend URL and request timeout.
func processAPIInputs(cfg *Config, input *ConfigRawInput) error {
	apiURL, err := NormalizeAPIURL(input.APIURL)
	if err != nil {
		return err
	}
	cfg.APIURL = apiURL

	timeout, err := ParseTimeout(input.Timeout)
	if err != nil {
		return err
	}
	cfg.Timeout = timeout
	return nil
}

// validateSimpleInputs processes and validates the output, selector and server fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json", input.Output)
	}

	cfg.Language = strings.TrimSpace(input.Language)
	if cfg.Language != "" && !schema.IsQuestionLanguage(cfg.Language) {
		return fmt.Errorf("invalid language '%s'. must be one of %s", cfg.Language, strings.Join(schema.QuestionLanguages, ", "))
	}

	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	cfg.SessionLimit = input.Sessions
	if cfg.SessionLimit == 0 {
		cfg.SessionLimit = DefaultSessionLimit
	}
	if cfg.SessionLimit < 0 || cfg.SessionLimit > MaxSessionLimit {
		return fmt.Errorf("sessions must be greater than 0 and cannot exceed %d (received %d)", MaxSessionLimit, cfg.SessionLimit)
	}

	return nil
}

// parseBackend lower-cases a backend name, treating empty as NoneBackend.
func parseBackend(kind, raw string) (schema.DatabaseBackend, error) {
	if raw == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", kind, raw)
	}
	return backend, nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	backend, err := parseBackend("cache", input.CacheBackend)
	if err != nil {
		return err
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	backend, err = parseBackend("history", input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// SQLite stores must not share a file since each one deletes its file on clear
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}
