package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(analysisCacheTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "analysis_cache", false},
		{"valid name with numbers", "cache_123", false},
		{"valid leading underscore", "_cache", false},
		{"empty", "", true},
		{"leading digit", "1cache", true},
		{"hyphen", "analysis-cache", true},
		{"space", "analysis cache", true},
		{"injection attempt", "cache; DROP TABLE users", true},
		{"quote", `cache"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"analysis_cache"`},
		{schema.PostgreSQLBackend, `"analysis_cache"`},
		{schema.MySQLBackend, "`analysis_cache`"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("analysis_cache", tt.backend))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(3, schema.SQLiteBackend))
	assert.Equal(t, "?, ?", placeholders(2, schema.MySQLBackend))
	assert.Equal(t, "$1, $2, $3", placeholders(3, schema.PostgreSQLBackend))
}

func TestSQLiteCacheOperations(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store := newTestCacheStore(t)

		require.NoError(t, store.Set("key", []byte("value"), 1, 100))
		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(100), ts)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		store := newTestCacheStore(t)

		require.NoError(t, store.Set("key", []byte("old"), 1, 100))
		require.NoError(t, store.Set("key", []byte("new"), 2, 200))

		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		store := newTestCacheStore(t)

		_, _, _, err := store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("status", func(t *testing.T) {
		store := newTestCacheStore(t)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Zero(t, status.TotalEntries)

		require.NoError(t, store.Set("a", []byte("1"), 1, 1_700_000_000))
		require.NoError(t, store.Set("b", []byte("2"), 1, 1_700_000_600))

		status, err = store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(1_700_000_600, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1_700_000_000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestNoneBackendCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, store.Set("key", []byte("value"), 1, 1))

	_, _, _, err = store.Get("key")
	assert.Error(t, err, "set is a no-op without a backend")

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("empty table name", func(t *testing.T) {
		_, err := NewCacheStore("", schema.SQLiteBackend, ":memory:")
		assert.Error(t, err)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("analysis_cache", schema.DatabaseBackend("redis"), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported cache backend")
	})
}

func TestCacheStoreImplWithNilDB(t *testing.T) {
	store := &CacheStoreImpl{backend: schema.SQLiteBackend, tableName: "analysis_cache"}

	_, _, _, err := store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("key", nil, 1, 1))
	assert.NoError(t, store.Close())
}
