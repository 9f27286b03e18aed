package iocache

import (
	"sync"

	"github.com/codesage/codesage/internal/contract"
)

// CacheStoreManager manages the analysis cache and history stores.
type CacheStoreManager struct {
	sync.RWMutex  // Protects the store pointers during initialization
	analysisCache contract.CacheStore
	history       contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetAnalysisCache returns the analysis CacheStore.
func (mgr *CacheStoreManager) GetAnalysisCache() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysisCache
}

// GetHistoryStore returns the HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
