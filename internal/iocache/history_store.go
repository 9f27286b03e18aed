package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// Table names for history tracking.
const (
	conversationsTable = "codesage_conversations"
	documentationTable = "codesage_documentation"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tracking tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{conversationsTable, getCreateConversationsQuery(backend)},
		{documentationTable, getCreateDocumentationQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateConversationsQuery returns the CREATE TABLE query for codesage_conversations.
func getCreateConversationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(conversationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				session_id VARCHAR(64) NOT NULL,
				filename VARCHAR(512) NOT NULL,
				language VARCHAR(50) NOT NULL,
				question TEXT NOT NULL,
				answer MEDIUMTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGSERIAL PRIMARY KEY,
				session_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				question TEXT NOT NULL,
				answer TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				question TEXT NOT NULL,
				answer TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateDocumentationQuery returns the CREATE TABLE query for codesage_documentation.
func getCreateDocumentationQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(documentationTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				session_id VARCHAR(64) NOT NULL,
				filename VARCHAR(512) NOT NULL,
				language VARCHAR(50) NOT NULL,
				documentation MEDIUMTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id BIGSERIAL PRIMARY KEY,
				session_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				documentation TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				documentation TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// placeholders returns n comma-separated parameter placeholders for the backend.
func placeholders(n int, backend schema.DatabaseBackend) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		if backend == schema.PostgreSQLBackend {
			out += fmt.Sprintf("$%d", i)
		} else {
			out += "?"
		}
	}
	return out
}

// RecordConversation stores one answered question.
func (hs *HistoryStoreImpl) RecordConversation(sessionID, filename string, entry schema.QuestionResponse, at time.Time) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (session_id, filename, language, question, answer, created_at) VALUES (%s)`,
		quoteTableName(conversationsTable, hs.backend), placeholders(6, hs.backend))
	_, err := hs.db.Exec(query, sessionID, filename, entry.Language, entry.Question, entry.Answer, formatTime(at, hs.backend))
	if err != nil {
		return fmt.Errorf("failed to record conversation for %s: %w", filename, err)
	}
	return nil
}

// RecordDocumentation stores one generated documentation result.
func (hs *HistoryStoreImpl) RecordDocumentation(sessionID string, doc schema.DocumentationResponse, at time.Time) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (session_id, filename, language, documentation, created_at) VALUES (%s)`,
		quoteTableName(documentationTable, hs.backend), placeholders(5, hs.backend))
	_, err := hs.db.Exec(query, sessionID, doc.Filename, doc.Language, doc.Documentation, formatTime(at, hs.backend))
	if err != nil {
		return fmt.Errorf("failed to record documentation for %s: %w", doc.Filename, err)
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	for _, table := range []string{conversationsTable, documentationTable} {
		var count int64
		row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalConversations = int(status.TableSizes[conversationsTable])
	status.TotalDocuments = int(status.TableSizes[documentationTable])

	for _, table := range []string{conversationsTable, documentationTable} {
		if status.TableSizes[table] == 0 {
			continue
		}
		last, oldest, err := hs.entryTimeRange(table)
		if err != nil {
			return status, err
		}
		if last.After(status.LastEntryTime) {
			status.LastEntryTime = last
		}
		if status.OldestEntryTime.IsZero() || oldest.Before(status.OldestEntryTime) {
			status.OldestEntryTime = oldest
		}
	}

	return status, nil
}

// entryTimeRange returns the newest and oldest created_at in a non-empty table.
func (hs *HistoryStoreImpl) entryTimeRange(table string) (time.Time, time.Time, error) {
	query := fmt.Sprintf("SELECT MAX(created_at), MIN(created_at) FROM %s", quoteTableName(table, hs.backend))
	row := hs.db.QueryRow(query)

	switch hs.backend {
	case schema.SQLiteBackend:
		// RFC3339 text in UTC sorts chronologically
		var lastStr, oldestStr string
		if err := row.Scan(&lastStr, &oldestStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to get entry times for %s: %w", table, err)
		}
		last, err := parseTime(lastStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse last entry time: %w", err)
		}
		oldest, err := parseTime(oldestStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse oldest entry time: %w", err)
		}
		return last, oldest, nil
	default: // MySQL and PostgreSQL store as native datetime
		var last, oldest time.Time
		if err := row.Scan(&last, &oldest); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to get entry times for %s: %w", table, err)
		}
		return last, oldest, nil
	}
}

// GetAllConversations retrieves all recorded conversations from the store.
func (hs *HistoryStoreImpl) GetAllConversations() ([]schema.ConversationRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT entry_id, session_id, filename, language, question, answer, created_at FROM %s ORDER BY entry_id",
		quoteTableName(conversationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ConversationRecord
	for rows.Next() {
		var record schema.ConversationRecord
		dest := []any{&record.EntryID, &record.SessionID, &record.Filename, &record.Language, &record.Question, &record.Answer}
		if err := hs.scanWithTime(rows, dest, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return results, nil
}

// GetAllDocumentation retrieves all recorded documentation from the store.
func (hs *HistoryStoreImpl) GetAllDocumentation() ([]schema.DocumentationRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT entry_id, session_id, filename, language, documentation, created_at FROM %s ORDER BY entry_id",
		quoteTableName(documentationTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documentation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DocumentationRecord
	for rows.Next() {
		var record schema.DocumentationRecord
		dest := []any{&record.EntryID, &record.SessionID, &record.Filename, &record.Language, &record.Documentation}
		if err := hs.scanWithTime(rows, dest, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan documentation: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documentation: %w", err)
	}
	return results, nil
}

// scanWithTime scans a row whose last column is a timestamp.
func (hs *HistoryStoreImpl) scanWithTime(rows *sql.Rows, dest []any, at *time.Time) error {
	if hs.backend != schema.SQLiteBackend {
		return rows.Scan(append(dest, at)...)
	}
	var raw string
	if err := rows.Scan(append(dest, &raw)...); err != nil {
		return err
	}
	parsed, err := parseTime(raw)
	if err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	*at = parsed
	return nil
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
