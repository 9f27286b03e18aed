package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// defaultDocFilename names the pseudo-file when the analysis carries no filename.
const defaultDocFilename = "code.py"

// DocPanel generates documentation and holds the most recent result.
type DocPanel struct {
	client    contract.APIClient
	ws        *Workspace
	history   contract.HistoryStore
	sessionID string
	maxBytes  int64
	guard     requestGuard

	mu     sync.Mutex
	result *schema.DocumentationResponse
}

// NewDocPanel creates a panel reading from ws. history may be nil.
func NewDocPanel(client contract.APIClient, ws *Workspace, history contract.HistoryStore, sessionID string) *DocPanel {
	return &DocPanel{
		client:    client,
		ws:        ws,
		history:   history,
		sessionID: sessionID,
		maxBytes:  megabytes(schema.DefaultMaxFileSizeMB),
	}
}

// SetMaxFileSizeMB applies the limit advertised by the backend. Non-positive values are ignored.
func (p *DocPanel) SetMaxFileSizeMB(mb float64) {
	if mb > 0 {
		p.maxBytes = megabytes(mb)
	}
}

// FromAnalysis documents the analyzed workspace file.
func (p *DocPanel) FromAnalysis(ctx context.Context) (schema.DocumentationResponse, error) {
	snap := p.ws.Snapshot()
	if !snap.HasAnalysis() {
		return schema.DocumentationResponse{}, ErrNoAnalysis
	}
	name := snap.Result.Filename
	if strings.TrimSpace(name) == "" {
		name = defaultDocFilename
	}
	return p.generate(ctx, schema.FileUpload{Name: name, Content: []byte(snap.Code)})
}

// Upload documents a fresh file under the same rules as file intake.
func (p *DocPanel) Upload(ctx context.Context, files []schema.FileUpload) (schema.DocumentationResponse, error) {
	file, err := ValidateUpload(files, p.maxBytes)
	if err != nil {
		return schema.DocumentationResponse{}, err
	}
	return p.generate(ctx, file)
}

func (p *DocPanel) generate(ctx context.Context, file schema.FileUpload) (schema.DocumentationResponse, error) {
	if err := p.guard.begin(); err != nil {
		return schema.DocumentationResponse{}, err
	}

	doc, err := p.client.Document(ctx, file)
	if err != nil {
		p.guard.finish(err, DocsFallback)
		return schema.DocumentationResponse{}, fmt.Errorf("failed to generate documentation for %s: %w", file.Name, err)
	}
	if doc.Filename == "" {
		doc.Filename = filepath.Base(file.Name)
	}

	p.mu.Lock()
	p.result = &doc
	p.mu.Unlock()

	if p.history != nil {
		if err := p.history.RecordDocumentation(p.sessionID, doc, time.Now()); err != nil {
			contract.LogWarn("Failed to record documentation", err)
		}
	}

	p.guard.finish(nil, "")
	return doc, nil
}

// Result returns the most recent documentation, if any.
func (p *DocPanel) Result() (schema.DocumentationResponse, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return schema.DocumentationResponse{}, false
	}
	return *p.result, true
}

// State returns the panel state and the message of the last failure.
func (p *DocPanel) State() (schema.PanelState, string) {
	return p.guard.status()
}

// ClearError returns an errored panel to idle.
func (p *DocPanel) ClearError() {
	p.guard.clearError()
}

// DownloadName replaces the extension of filename with "_documentation.md".
func DownloadName(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = strings.TrimSuffix(defaultDocFilename, filepath.Ext(defaultDocFilename))
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_documentation.md"
}
