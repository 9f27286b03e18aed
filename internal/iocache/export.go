package iocache

import (
	"errors"
	"fmt"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/parquet"
)

// ExecuteHistoryExport writes the recorded history to Parquet files named
// <outputFile>.conversations.parquet and <outputFile>.documentation.parquet.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured. Set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalConversations == 0 && status.TotalDocuments == 0 {
		return errors.New("no history data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total conversations: %d\n", status.TotalConversations)
	fmt.Printf("Total documents: %d\n", status.TotalDocuments)

	conversations, err := store.GetAllConversations()
	if err != nil {
		return fmt.Errorf("failed to retrieve conversations: %w", err)
	}

	documents, err := store.GetAllDocumentation()
	if err != nil {
		return fmt.Errorf("failed to retrieve documentation: %w", err)
	}

	conversationsFile := outputFile + ".conversations.parquet"
	if err := parquet.WriteConversationsParquet(parquet.ConvertConversationRecords(conversations), conversationsFile); err != nil {
		return fmt.Errorf("failed to write conversations: %w", err)
	}
	fmt.Printf("Exported %d conversations to: %s\n", len(conversations), conversationsFile)

	documentationFile := outputFile + ".documentation.parquet"
	if err := parquet.WriteDocumentationParquet(parquet.ConvertDocumentationRecords(documents), documentationFile); err != nil {
		return fmt.Errorf("failed to write documentation: %w", err)
	}
	fmt.Printf("Exported %d documents to: %s\n", len(documents), documentationFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Spark.")

	return nil
}
