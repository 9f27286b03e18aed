package schema

import "time"

// ConversationRecord represents a row from the codesage_conversations table.
type ConversationRecord struct {
	EntryID   int64     `json:"entry_id"`
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	Language  string    `json:"language"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentationRecord represents a row from the codesage_documentation table.
type DocumentationRecord struct {
	EntryID       int64     `json:"entry_id"`
	SessionID     string    `json:"session_id"`
	Filename      string    `json:"filename"`
	Language      string    `json:"language"`
	Documentation string    `json:"documentation"`
	CreatedAt     time.Time `json:"created_at"`
}
