package core

import (
	"github.com/codesage/codesage/internal/contract"
	"github.com/google/uuid"
)

// Session bundles a workspace with the panels that read from it.
type Session struct {
	ID        string
	Workspace *Workspace
	Intake    *FileIntake
	QA        *QAPanel
	Docs      *DocPanel
}

// NewSession wires a fresh workspace to its panels. An empty id gets a random
// one. mgr may be nil, or return nil stores, to disable caching and history.
func NewSession(id string, client contract.APIClient, mgr contract.CacheManager) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	var cache contract.CacheStore
	var history contract.HistoryStore
	if mgr != nil {
		cache = mgr.GetAnalysisCache()
		history = mgr.GetHistoryStore()
	}

	ws := NewWorkspace()
	return &Session{
		ID:        id,
		Workspace: ws,
		Intake:    NewFileIntake(client, ws, cache),
		QA:        NewQAPanel(client, ws, history, id),
		Docs:      NewDocPanel(client, ws, history, id),
	}
}

// SetMaxFileSizeMB applies the backend upload limit to every panel that uploads files.
func (s *Session) SetMaxFileSizeMB(mb float64) {
	s.Intake.SetMaxFileSizeMB(mb)
	s.Docs.SetMaxFileSizeMB(mb)
}

// ClearErrors returns every errored panel to idle, as a tab switch does.
func (s *Session) ClearErrors() {
	s.Intake.ClearError()
	s.QA.ClearError()
	s.Docs.ClearError()
}
