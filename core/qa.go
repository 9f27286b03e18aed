package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// QAPanel asks questions about the workspace code and keeps the conversation log
// of the current file.
type QAPanel struct {
	client    contract.APIClient
	ws        *Workspace
	history   contract.HistoryStore
	sessionID string
	guard     requestGuard

	mu         sync.Mutex
	generation uint64
	language   string
	draft      string
	log        []schema.QuestionResponse
}

// NewQAPanel creates a panel reading from ws. history may be nil.
func NewQAPanel(client contract.APIClient, ws *Workspace, history contract.HistoryStore, sessionID string) *QAPanel {
	return &QAPanel{
		client:    client,
		ws:        ws,
		history:   history,
		sessionID: sessionID,
		language:  schema.GenericLanguage,
	}
}

// syncLocked resets the language and the log when a new analysis has been published.
func (p *QAPanel) syncLocked() Snapshot {
	snap := p.ws.Snapshot()
	if snap.Generation != p.generation {
		p.generation = snap.Generation
		p.language = snap.DetectedLanguage()
		p.log = nil
	}
	return snap
}

// Language returns the selected question language.
func (p *QAPanel) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
	return p.language
}

// SetLanguage selects one of schema.QuestionLanguages.
func (p *QAPanel) SetLanguage(lang string) error {
	if !schema.IsQuestionLanguage(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
	p.language = lang
	return nil
}

// Draft returns the question being typed.
func (p *QAPanel) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// SetDraft stores the question being typed.
func (p *QAPanel) SetDraft(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = s
}

// Log returns a copy of the conversation log of the current file.
func (p *QAPanel) Log() []schema.QuestionResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
	out := make([]schema.QuestionResponse, len(p.log))
	copy(out, p.log)
	return out
}

// Ask submits question about the workspace code in the selected language.
func (p *QAPanel) Ask(ctx context.Context, question string) (schema.QuestionResponse, error) {
	p.mu.Lock()
	snap := p.syncLocked()
	lang := p.language
	p.mu.Unlock()

	return p.ask(ctx, question, snap, schema.QuestionRequest{
		Question:    question,
		CodeContent: snap.Code,
		Language:    lang,
	})
}

// AskAbout submits a question about code that is not in the workspace. The
// log is not touched.
func (p *QAPanel) AskAbout(ctx context.Context, question, code, lang string) (schema.QuestionResponse, error) {
	if lang == "" {
		lang = schema.GenericLanguage
	}
	return p.ask(ctx, question, Snapshot{}, schema.QuestionRequest{
		Question:    question,
		CodeContent: code,
		Language:    lang,
	})
}

func (p *QAPanel) ask(ctx context.Context, question string, snap Snapshot, req schema.QuestionRequest) (schema.QuestionResponse, error) {
	if strings.TrimSpace(question) == "" {
		return schema.QuestionResponse{}, ErrEmptyQuestion
	}
	if strings.TrimSpace(req.CodeContent) == "" {
		return schema.QuestionResponse{}, ErrNoCode
	}
	if err := p.guard.begin(); err != nil {
		return schema.QuestionResponse{}, err
	}

	resp, err := p.client.Ask(ctx, req)
	if err != nil {
		p.guard.finish(err, QuestionFallback)
		return schema.QuestionResponse{}, fmt.Errorf("failed to ask question: %w", err)
	}

	filename := ""
	if snap.HasAnalysis() {
		filename = snap.Result.Filename
		p.mu.Lock()
		// An answer for a file that has since been replaced is not logged
		if p.generation == snap.Generation {
			p.log = append(p.log, resp)
			p.draft = ""
		}
		p.mu.Unlock()
	}

	if p.history != nil {
		if err := p.history.RecordConversation(p.sessionID, filename, resp, time.Now()); err != nil {
			contract.LogWarn("Failed to record conversation", err)
		}
	}

	p.guard.finish(nil, "")
	return resp, nil
}

// State returns the panel state and the message of the last failure.
func (p *QAPanel) State() (schema.PanelState, string) {
	return p.guard.status()
}

// ClearError returns an errored panel to idle.
func (p *QAPanel) ClearError() {
	p.guard.clearError()
}
