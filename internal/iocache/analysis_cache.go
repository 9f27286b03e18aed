package iocache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// analysisCacheTable is the name of the table for cached analysis responses.
const analysisCacheTable = "analysis_cache"

// CacheVersion is stored with every entry; entries with another version are ignored.
const CacheVersion = 1

// cacheTTL is how long a cached analysis is served before it is fetched again.
const cacheTTL = 7 * 24 * time.Hour

// AnalysisCacheKey returns the cache key for a file. Two uploads share a key
// only when both the base filename and the content are identical.
func AnalysisCacheKey(filename string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(filepath.Base(filename)))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// LoadAnalysis looks up a cached analysis for the file.
// The boolean is false on any miss, including a nil store, an expired entry or
// an entry written with another CacheVersion.
func LoadAnalysis(store contract.CacheStore, file schema.FileUpload) (schema.AnalysisResult, bool) {
	var result schema.AnalysisResult
	if store == nil {
		return result, false
	}
	value, version, ts, err := store.Get(AnalysisCacheKey(file.Name, file.Content))
	if err != nil || version != CacheVersion {
		return result, false
	}
	if time.Since(time.Unix(ts, 0)) > cacheTTL {
		return result, false
	}
	if err := json.Unmarshal(value, &result); err != nil {
		return result, false
	}
	return result, true
}

// SaveAnalysis stores the analysis of a file.
func SaveAnalysis(store contract.CacheStore, file schema.FileUpload, result schema.AnalysisResult, at time.Time) error {
	if store == nil {
		return nil
	}
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis for %s: %w", file.Name, err)
	}
	return store.Set(AnalysisCacheKey(file.Name, file.Content), value, CacheVersion, at.Unix())
}
