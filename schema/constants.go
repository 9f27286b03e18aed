package schema

import (
	"path/filepath"
	"strings"
)

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// ScoreClass represents the colour class assigned to a score.
	ScoreClass string

	// PanelState represents the request lifecycle of a panel.
	PanelState string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Score colour classes.
const (
	ScoreGreen   ScoreClass = "green"
	ScoreYellow  ScoreClass = "yellow"
	ScoreRed     ScoreClass = "red"
	ScoreNeutral ScoreClass = "neutral"
)

// Panel lifecycle states.
const (
	IdleState    PanelState = "idle"
	LoadingState PanelState = "loading"
	SuccessState PanelState = "success"
	ErrorState   PanelState = "error"
)

// GenericLanguage is the question language used when nothing was detected.
const GenericLanguage = "Generic"

// DefaultMaxFileSizeMB mirrors the backend upload limit when it is not advertised.
const DefaultMaxFileSizeMB = 10.0

// AllowedExtensions is the fixed allow-list of uploadable file extensions.
var AllowedExtensions = []string{
	".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".cpp", ".c", ".h", ".cs",
	".go", ".rs", ".rb", ".php", ".swift", ".kt", ".scala", ".r", ".sql",
	".html", ".css", ".scss", ".json", ".yaml", ".yml", ".xml", ".md", ".txt",
}

// QuestionLanguages is the fixed list offered by the question language selector.
var QuestionLanguages = []string{
	GenericLanguage, "Python", "JavaScript", "TypeScript", "Java", "C++", "Go", "Rust",
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

var allowedExtensionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(AllowedExtensions))
	for _, ext := range AllowedExtensions {
		set[ext] = struct{}{}
	}
	return set
}()

// IsAllowedExtension reports whether the lower-cased extension of name is uploadable.
func IsAllowedExtension(name string) bool {
	_, ok := allowedExtensionSet[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsQuestionLanguage reports whether lang is one of the selector entries.
func IsQuestionLanguage(lang string) bool {
	for _, l := range QuestionLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
