package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codesage/codesage/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Conversation))
	require.NotNil(t, s)

	for _, colName := range []string{"entry_id", "session_id", "filename", "language", "question", "answer", "created_at"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestDocumentationStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Documentation))
	require.NotNil(t, s)

	for _, colName := range []string{"entry_id", "session_id", "filename", "language", "documentation", "created_at"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestWriteConversationsParquet(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	records := []schema.ConversationRecord{
		{EntryID: 1, SessionID: "s1", Filename: "example.js", Language: "JavaScript", Question: "What does add do?", Answer: "It adds.", CreatedAt: created},
		{EntryID: 2, SessionID: "s1", Language: "Generic", Question: "What is a closure?", Answer: "A function with captured state.", CreatedAt: created.Add(time.Minute)},
	}
	data := ConvertConversationRecords(records)

	outputPath := filepath.Join(t.TempDir(), "conversations.parquet")
	require.NoError(t, WriteConversationsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	got := readAll[Conversation](t, outputPath)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Filename)
	assert.Equal(t, "example.js", *got[0].Filename)
	assert.Nil(t, got[1].Filename, "questions without a file keep a null filename")
	assert.Equal(t, "What is a closure?", got[1].Question)
	assert.Equal(t, "Generic", got[1].Language)
	assert.WithinDuration(t, created, got[0].CreatedAt, time.Microsecond)
}

func TestWriteDocumentationParquet(t *testing.T) {
	records := []schema.DocumentationRecord{
		{EntryID: 7, SessionID: "abc", Filename: "calc.py", Language: "Python", Documentation: "# calc", CreatedAt: time.Now().UTC()},
	}

	outputPath := filepath.Join(t.TempDir(), "documentation.parquet")
	require.NoError(t, WriteDocumentationParquet(ConvertDocumentationRecords(records), outputPath))

	got := readAll[Documentation](t, outputPath)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].EntryID)
	assert.Equal(t, "calc.py", got[0].Filename)
	assert.Equal(t, "# calc", got[0].Documentation)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteConversationsParquet(nil, outputPath))

	_, err := os.Stat(outputPath)
	assert.NoError(t, err, "an empty export still produces a valid file")
	assert.Empty(t, readAll[Conversation](t, outputPath))
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteDocumentationParquet(nil, filepath.Join(t.TempDir(), "missing", "dir", "out.parquet"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestConvertRecords_Empty(t *testing.T) {
	assert.Empty(t, ConvertConversationRecords(nil))
	assert.Empty(t, ConvertDocumentationRecords(nil))
}
