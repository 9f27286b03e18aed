package iocache

import (
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetAnalysisCache implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisCache() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	value, _ := args.Get(0).([]byte)
	return value, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// RecordConversation implements the HistoryStore interface.
func (m *MockHistoryStore) RecordConversation(sessionID, filename string, entry schema.QuestionResponse, at time.Time) error {
	args := m.Called(sessionID, filename, entry, at)
	return args.Error(0)
}

// RecordDocumentation implements the HistoryStore interface.
func (m *MockHistoryStore) RecordDocumentation(sessionID string, doc schema.DocumentationResponse, at time.Time) error {
	args := m.Called(sessionID, doc, at)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllConversations implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllConversations() ([]schema.ConversationRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ConversationRecord)
	return records, args.Error(1)
}

// GetAllDocumentation implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllDocumentation() ([]schema.DocumentationRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.DocumentationRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
