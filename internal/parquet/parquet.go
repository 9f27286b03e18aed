// Package parquet provides data structures and functions for exporting codesage
// history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/codesage/codesage/schema"
	"github.com/parquet-go/parquet-go"
)

// Conversation is one answered question.
// This struct maps to the codesage_conversations database table.
type Conversation struct {
	// EntryID is the unique identifier of the row
	EntryID int64 `parquet:"entry_id,snappy"`

	// SessionID groups entries asked from the same browser or CLI session
	SessionID string `parquet:"session_id,snappy,dict"`

	// Filename is the analyzed file the question was about (nullable)
	Filename *string `parquet:"filename,optional,snappy"`

	// Language is the language the question was asked in
	Language string `parquet:"language,snappy,dict"`

	Question string `parquet:"question,snappy"`
	Answer   string `parquet:"answer,snappy"`

	// CreatedAt is when the answer was received (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// Documentation is one generated documentation result.
// This struct maps to the codesage_documentation database table.
type Documentation struct {
	EntryID       int64     `parquet:"entry_id,snappy"`
	SessionID     string    `parquet:"session_id,snappy,dict"`
	Filename      string    `parquet:"filename,snappy"`
	Language      string    `parquet:"language,snappy,dict"`
	Documentation string    `parquet:"documentation,snappy"`
	CreatedAt     time.Time `parquet:"created_at,snappy"`
}

// WriteConversationsParquet writes a slice of Conversation structs to a Parquet file.
func WriteConversationsParquet(data []Conversation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDocumentationParquet writes a slice of Documentation structs to a Parquet file.
func WriteDocumentationParquet(data []Documentation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using a schema derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertConversationRecords converts schema.ConversationRecord to Conversation for Parquet export.
// Questions asked without an analyzed file have no filename.
func ConvertConversationRecords(records []schema.ConversationRecord) []Conversation {
	result := make([]Conversation, len(records))
	for i, record := range records {
		var filename *string
		if record.Filename != "" {
			name := record.Filename
			filename = &name
		}
		result[i] = Conversation{
			EntryID:   record.EntryID,
			SessionID: record.SessionID,
			Filename:  filename,
			Language:  record.Language,
			Question:  record.Question,
			Answer:    record.Answer,
			CreatedAt: record.CreatedAt,
		}
	}
	return result
}

// ConvertDocumentationRecords converts schema.DocumentationRecord to Documentation for Parquet export.
func ConvertDocumentationRecords(records []schema.DocumentationRecord) []Documentation {
	result := make([]Documentation, len(records))
	for i, record := range records {
		result[i] = Documentation{
			EntryID:       record.EntryID,
			SessionID:     record.SessionID,
			Filename:      record.Filename,
			Language:      record.Language,
			Documentation: record.Documentation,
			CreatedAt:     record.CreatedAt,
		}
	}
	return result
}
