package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codesage/codesage/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	GreenColor   = color.New(color.FgGreen, color.Bold) // GreenColor represents a healthy score.
	YellowColor  = color.New(color.FgYellow)            // YellowColor represents standard caution, not bold.
	RedColor     = color.New(color.FgRed, color.Bold)   // RedColor represents standard danger.
	NeutralColor = color.New(color.Faint)               // NeutralColor is used when no score exists.
)

// GetColorLabel colours text according to the given score class for console output.
func GetColorLabel(text string, class schema.ScoreClass) string {
	switch class {
	case schema.ScoreGreen:
		return GreenColor.Sprint(text)
	case schema.ScoreYellow:
		return YellowColor.Sprint(text)
	case schema.ScoreRed:
		return RedColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the analysis cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".codesage_cache.db"
	}
	return filepath.Join(homeDir, ".codesage_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".codesage_history.db"
	}
	return filepath.Join(homeDir, ".codesage_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// An empty string is treated as true.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
