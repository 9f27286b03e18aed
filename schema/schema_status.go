package schema

import "time"

// CacheStatus represents the status of the analysis cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalConversations int              `json:"total_conversations"`
	TotalDocuments     int              `json:"total_documents"`
	LastEntryTime      time.Time        `json:"last_entry_time"`
	OldestEntryTime    time.Time        `json:"oldest_entry_time"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}
