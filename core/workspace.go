package core

import (
	"strings"
	"sync"

	"github.com/codesage/codesage/schema"
)

// Snapshot is the code text and analysis published by the last successful analyze.
type Snapshot struct {
	Code       string
	Result     *schema.AnalysisResult
	Generation uint64
}

// HasAnalysis reports whether an analysis has been published.
func (s Snapshot) HasAnalysis() bool {
	return s.Result != nil
}

// DetectedLanguage maps the analysis language onto the question selector,
// falling back to Generic when there is no analysis or no matching entry.
func (s Snapshot) DetectedLanguage() string {
	if s.Result == nil {
		return schema.GenericLanguage
	}
	for _, detected := range []string{s.Result.Language, s.Result.BasicAnalysis.Language} {
		for _, lang := range schema.QuestionLanguages {
			if strings.EqualFold(lang, strings.TrimSpace(detected)) {
				return lang
			}
		}
	}
	return schema.GenericLanguage
}

// Workspace holds the shared (code, analysis) pair. Readers always see a
// complete pair because both halves are swapped under one lock.
type Workspace struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Snapshot returns the current pair.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snap
}

// Publish replaces the pair and bumps the generation.
func (w *Workspace) Publish(code string, result schema.AnalysisResult) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap = Snapshot{
		Code:       code,
		Result:     &result,
		Generation: w.snap.Generation + 1,
	}
	return w.snap
}
