// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/codesage/codesage/schema"
)

// APIClient defines the calls made against the remote analysis service.
// This allows the panels to be tested without a running backend.
type APIClient interface {
	// Analyze uploads a single file and returns its analysis.
	Analyze(ctx context.Context, file schema.FileUpload) (schema.AnalysisResult, error)

	// Ask submits a question about the given code.
	Ask(ctx context.Context, req schema.QuestionRequest) (schema.QuestionResponse, error)

	// Document uploads a single file and returns generated Markdown documentation.
	Document(ctx context.Context, file schema.FileUpload) (schema.DocumentationResponse, error)

	// SupportedExtensions returns the extensions and size limit advertised by the backend.
	SupportedExtensions(ctx context.Context) (schema.SupportedExtensions, error)

	// Health returns the backend health report.
	Health(ctx context.Context) (schema.HealthStatus, error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetAnalysisCache() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording answered questions and generated documentation.
type HistoryStore interface {
	// RecordConversation stores one question/answer pair for a file
	RecordConversation(sessionID, filename string, entry schema.QuestionResponse, at time.Time) error

	// RecordDocumentation stores one documentation result
	RecordDocumentation(sessionID string, doc schema.DocumentationResponse, at time.Time) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllConversations returns every stored conversation entry in insertion order
	GetAllConversations() ([]schema.ConversationRecord, error)

	// GetAllDocumentation returns every stored documentation entry in insertion order
	GetAllDocumentation() ([]schema.DocumentationRecord, error)

	// Close closes the underlying connection
	Close() error
}
