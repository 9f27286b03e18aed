package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/internal/iocache"
	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const exampleJS = `class Calculator {
  add(a, b) {
    return a + b;
  }
}
`

func exampleUpload() schema.FileUpload {
	return schema.FileUpload{Name: "example.js", Content: []byte(exampleJS)}
}

func exampleResult() schema.AnalysisResult {
	return schema.AnalysisResult{
		Filename:      "example.js",
		Language:      "JavaScript",
		FileExtension: ".js",
		BasicAnalysis: schema.BasicAnalysis{Language: "JavaScript", ComplexityScore: 1},
		CodePreview:   exampleJS,
	}
}

func newTestSession(client *apiclient.MockClient) *Session {
	return NewSession("test-session", client, nil)
}

func TestWorkspacePublish(t *testing.T) {
	ws := NewWorkspace()
	assert.False(t, ws.Snapshot().HasAnalysis())
	assert.Equal(t, schema.GenericLanguage, ws.Snapshot().DetectedLanguage())

	first := ws.Publish("a", schema.AnalysisResult{Filename: "a.py", Language: "Python"})
	second := ws.Publish("b", schema.AnalysisResult{Filename: "b.rb", Language: "Ruby"})

	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, uint64(2), second.Generation)
	assert.Equal(t, "Python", first.DetectedLanguage())
	assert.Equal(t, schema.GenericLanguage, second.DetectedLanguage(), "languages outside the selector fall back")

	snap := ws.Snapshot()
	assert.Equal(t, "b", snap.Code)
	assert.Equal(t, "b.rb", snap.Result.Filename)
}

func TestWorkspacePairIsAtomic(t *testing.T) {
	ws := NewWorkspace()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			name := "a.py"
			if i%2 == 1 {
				name = "b.py"
			}
			ws.Publish(name, schema.AnalysisResult{Filename: name})
		}
	}()

	for range 200 {
		snap := ws.Snapshot()
		if snap.HasAnalysis() {
			assert.Equal(t, snap.Code, snap.Result.Filename)
		}
	}
	wg.Wait()
}

func TestDetectedLanguageCaseInsensitive(t *testing.T) {
	snap := Snapshot{Result: &schema.AnalysisResult{Language: "typescript"}}
	assert.Equal(t, "TypeScript", snap.DetectedLanguage())

	snap = Snapshot{Result: &schema.AnalysisResult{BasicAnalysis: schema.BasicAnalysis{Language: "Go"}}}
	assert.Equal(t, "Go", snap.DetectedLanguage())
}

func TestValidateUpload(t *testing.T) {
	ok := schema.FileUpload{Name: "main.go", Content: []byte("package main")}

	tests := []struct {
		name    string
		files   []schema.FileUpload
		max     int64
		wantErr error
	}{
		{"no files", nil, 100, ErrSingleFile},
		{"two files", []schema.FileUpload{ok, ok}, 100, ErrSingleFile},
		{"bad extension", []schema.FileUpload{{Name: "photo.png"}}, 100, ErrUnsupportedExtension},
		{"hpp not allowed", []schema.FileUpload{{Name: "vec.hpp"}}, 100, ErrUnsupportedExtension},
		{"too large", []schema.FileUpload{ok}, 4, ErrFileTooLarge},
		{"upper case extension", []schema.FileUpload{{Name: "MAIN.GO"}}, 100, nil},
		{"ok", []schema.FileUpload{ok}, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateUpload(tt.files, tt.max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFileIntakeSubmit(t *testing.T) {
	t.Run("success publishes pair", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, exampleUpload()).Return(exampleResult(), nil).Once()
		s := newTestSession(client)

		result, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.NoError(t, err)
		assert.Equal(t, "example.js", result.Filename)

		snap := s.Workspace.Snapshot()
		assert.Equal(t, exampleJS, snap.Code)
		assert.Equal(t, "example.js", snap.Result.Filename)

		state, msg := s.Intake.State()
		assert.Equal(t, schema.SuccessState, state)
		assert.Empty(t, msg)
		client.AssertExpectations(t)
	})

	t.Run("precondition issues no request", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := newTestSession(client)

		_, err := s.Intake.Submit(context.Background(), nil)
		assert.ErrorIs(t, err, ErrSingleFile)
		client.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)

		state, _ := s.Intake.State()
		assert.Equal(t, schema.IdleState, state)
	})

	t.Run("failure keeps workspace and surfaces detail", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, exampleUpload()).Return(exampleResult(), nil).Once()
		client.On("Analyze", mock.Anything, mock.Anything).
			Return(schema.AnalysisResult{}, &apiclient.APIError{StatusCode: 500, Detail: "Analysis failed: boom"}).Once()
		s := newTestSession(client)

		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.NoError(t, err)

		other := schema.FileUpload{Name: "other.py", Content: []byte("x = 1")}
		_, err = s.Intake.Submit(context.Background(), []schema.FileUpload{other})
		require.Error(t, err)

		var apiErr *apiclient.APIError
		assert.ErrorAs(t, err, &apiErr)

		state, msg := s.Intake.State()
		assert.Equal(t, schema.ErrorState, state)
		assert.Equal(t, "Analysis failed: boom", msg)
		assert.Equal(t, "example.js", s.Workspace.Snapshot().Result.Filename)

		s.ClearErrors()
		state, _ = s.Intake.State()
		assert.Equal(t, schema.IdleState, state)
	})

	t.Run("transport failure uses fallback", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, mock.Anything).
			Return(schema.AnalysisResult{}, &apiclient.TransportError{Method: "POST", URL: "http://x/analyze", Err: errors.New("refused")})
		s := newTestSession(client)

		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.Error(t, err)
		_, msg := s.Intake.State()
		assert.Equal(t, AnalyzeFallback, msg)
		assert.False(t, s.Workspace.Snapshot().HasAnalysis())
	})

	t.Run("busy while in flight", func(t *testing.T) {
		client := &apiclient.MockClient{}
		started := make(chan struct{})
		release := make(chan struct{})
		client.On("Analyze", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(exampleResult(), nil).Once()
		s := newTestSession(client)

		done := make(chan error)
		go func() {
			_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
			done <- err
		}()

		<-started
		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		assert.ErrorIs(t, err, ErrBusy)

		close(release)
		assert.NoError(t, <-done)
		client.AssertNumberOfCalls(t, "Analyze", 1)
	})

	t.Run("cache hit skips request", func(t *testing.T) {
		cacheStore, err := iocache.NewCacheStore("analysis_cache", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = cacheStore.Close() }()

		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, mock.Anything).Return(exampleResult(), nil).Once()
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisCache").Return(cacheStore)
		mgr.On("GetHistoryStore").Return(nil)
		s := NewSession("", client, mgr)
		assert.NotEmpty(t, s.ID)

		for range 2 {
			_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
			require.NoError(t, err)
		}
		client.AssertNumberOfCalls(t, "Analyze", 1)
	})
}

func TestQAPanel(t *testing.T) {
	analyzed := func(t *testing.T, client *apiclient.MockClient) *Session {
		t.Helper()
		client.On("Analyze", mock.Anything, mock.Anything).Return(exampleResult(), nil).Once()
		s := newTestSession(client)
		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.NoError(t, err)
		return s
	}

	t.Run("defaults to generic without analysis", func(t *testing.T) {
		s := newTestSession(&apiclient.MockClient{})
		assert.Equal(t, schema.GenericLanguage, s.QA.Language())
	})

	t.Run("empty question is a no-op", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := analyzed(t, client)
		s.QA.SetDraft("   ")

		_, err := s.QA.Ask(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
		assert.Empty(t, s.QA.Log())
		assert.Equal(t, "   ", s.QA.Draft())
		client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
	})

	t.Run("no code is a no-op", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := newTestSession(client)

		_, err := s.QA.Ask(context.Background(), "What is this?")
		assert.ErrorIs(t, err, ErrNoCode)
		client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
	})

	t.Run("rejects languages outside the selector", func(t *testing.T) {
		s := newTestSession(&apiclient.MockClient{})
		assert.ErrorIs(t, s.QA.SetLanguage("COBOL"), ErrUnsupportedLanguage)
		assert.NoError(t, s.QA.SetLanguage("Rust"))
		assert.Equal(t, "Rust", s.QA.Language())
	})

	t.Run("new analysis resets language and log", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := analyzed(t, client)
		client.On("Ask", mock.Anything, mock.Anything).Return(schema.QuestionResponse{Question: "q", Answer: "a", Language: "Go"}, nil)

		require.NoError(t, s.QA.SetLanguage("Go"))
		_, err := s.QA.Ask(context.Background(), "q")
		require.NoError(t, err)
		assert.Len(t, s.QA.Log(), 1)

		python := schema.AnalysisResult{Filename: "calc.py", Language: "Python"}
		client.On("Analyze", mock.Anything, mock.Anything).Return(python, nil).Once()
		_, err = s.Intake.Submit(context.Background(), []schema.FileUpload{{Name: "calc.py", Content: []byte("x = 1")}})
		require.NoError(t, err)

		assert.Equal(t, "Python", s.QA.Language())
		assert.Empty(t, s.QA.Log())
	})

	t.Run("failure keeps log and draft", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := analyzed(t, client)
		client.On("Ask", mock.Anything, mock.Anything).
			Return(schema.QuestionResponse{}, &apiclient.APIError{StatusCode: 400, Detail: "Question cannot be empty"})

		s.QA.SetDraft("Why?")
		_, err := s.QA.Ask(context.Background(), "Why?")
		require.Error(t, err)
		assert.Empty(t, s.QA.Log())
		assert.Equal(t, "Why?", s.QA.Draft())

		state, msg := s.QA.State()
		assert.Equal(t, schema.ErrorState, state)
		assert.Equal(t, "Question cannot be empty", msg)
	})

	t.Run("records history", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, mock.Anything).Return(exampleResult(), nil).Once()
		resp := schema.QuestionResponse{Question: "q", Answer: "a", Language: "JavaScript"}
		client.On("Ask", mock.Anything, mock.Anything).Return(resp, nil)

		history := &iocache.MockHistoryStore{}
		history.On("RecordConversation", "sid", "example.js", resp, mock.Anything).Return(nil).Once()
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisCache").Return(nil)
		mgr.On("GetHistoryStore").Return(history)

		s := NewSession("sid", client, mgr)
		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.NoError(t, err)
		_, err = s.QA.Ask(context.Background(), "q")
		require.NoError(t, err)
		history.AssertExpectations(t)
	})

	t.Run("ask about other code leaves log alone", func(t *testing.T) {
		client := &apiclient.MockClient{}
		want := schema.QuestionRequest{Question: "What is x?", CodeContent: "x = 1", Language: schema.GenericLanguage}
		client.On("Ask", mock.Anything, want).Return(schema.QuestionResponse{Question: "What is x?", Answer: "One."}, nil).Once()
		s := newTestSession(client)

		resp, err := s.QA.AskAbout(context.Background(), "What is x?", "x = 1", "")
		require.NoError(t, err)
		assert.Equal(t, "One.", resp.Answer)
		assert.Empty(t, s.QA.Log())
		client.AssertExpectations(t)
	})

	t.Run("busy while in flight", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := analyzed(t, client)
		started := make(chan struct{})
		release := make(chan struct{})
		client.On("Ask", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(schema.QuestionResponse{Question: "first", Answer: "a"}, nil).Once()

		done := make(chan error)
		go func() {
			_, err := s.QA.Ask(context.Background(), "first")
			done <- err
		}()

		<-started
		state, _ := s.QA.State()
		assert.Equal(t, schema.LoadingState, state)
		_, err := s.QA.Ask(context.Background(), "second")
		assert.ErrorIs(t, err, ErrBusy)

		close(release)
		require.NoError(t, <-done)
		log := s.QA.Log()
		require.Len(t, log, 1)
		assert.Equal(t, "first", log[0].Question)
		client.AssertNumberOfCalls(t, "Ask", 1)
	})
}

func TestDocPanel(t *testing.T) {
	t.Run("from analysis requires analysis", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := newTestSession(client)
		_, err := s.Docs.FromAnalysis(context.Background())
		assert.ErrorIs(t, err, ErrNoAnalysis)
	})

	t.Run("from analysis sends workspace text and filename", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Analyze", mock.Anything, mock.Anything).Return(exampleResult(), nil).Once()
		doc := schema.DocumentationResponse{Filename: "example.js", Language: "JavaScript", Documentation: "# Calculator"}
		client.On("Document", mock.Anything, exampleUpload()).Return(doc, nil).Once()
		s := newTestSession(client)

		_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
		require.NoError(t, err)

		got, err := s.Docs.FromAnalysis(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "# Calculator", got.Documentation)

		latest, ok := s.Docs.Result()
		require.True(t, ok)
		assert.Equal(t, doc, latest)
		client.AssertExpectations(t)
	})

	t.Run("unnamed analysis defaults to code.py", func(t *testing.T) {
		client := &apiclient.MockClient{}
		client.On("Document", mock.Anything, schema.FileUpload{Name: "code.py", Content: []byte("x = 1")}).
			Return(schema.DocumentationResponse{Documentation: "doc"}, nil).Once()
		s := newTestSession(client)
		s.Workspace.Publish("x = 1", schema.AnalysisResult{})

		got, err := s.Docs.FromAnalysis(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "code.py", got.Filename)
		client.AssertExpectations(t)
	})

	t.Run("upload validates and keeps prior result on failure", func(t *testing.T) {
		client := &apiclient.MockClient{}
		first := schema.DocumentationResponse{Filename: "a.go", Documentation: "# a"}
		client.On("Document", mock.Anything, mock.Anything).Return(first, nil).Once()
		client.On("Document", mock.Anything, mock.Anything).Return(schema.DocumentationResponse{}, errors.New("down")).Once()
		s := newTestSession(client)

		_, err := s.Docs.Upload(context.Background(), []schema.FileUpload{{Name: "a.exe"}})
		assert.ErrorIs(t, err, ErrUnsupportedExtension)

		_, err = s.Docs.Upload(context.Background(), []schema.FileUpload{{Name: "a.go", Content: []byte("package a")}})
		require.NoError(t, err)
		_, err = s.Docs.Upload(context.Background(), []schema.FileUpload{{Name: "b.go", Content: []byte("package b")}})
		require.Error(t, err)

		latest, ok := s.Docs.Result()
		require.True(t, ok)
		assert.Equal(t, first, latest)
		_, msg := s.Docs.State()
		assert.Equal(t, DocsFallback, msg)
	})

	t.Run("busy while in flight", func(t *testing.T) {
		client := &apiclient.MockClient{}
		s := newTestSession(client)
		s.Workspace.Publish(exampleJS, exampleResult())
		started := make(chan struct{})
		release := make(chan struct{})
		doc := schema.DocumentationResponse{Filename: "example.js", Documentation: "# Calculator"}
		client.On("Document", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return(doc, nil).Once()

		done := make(chan error)
		go func() {
			_, err := s.Docs.FromAnalysis(context.Background())
			done <- err
		}()

		<-started
		_, err := s.Docs.FromAnalysis(context.Background())
		assert.ErrorIs(t, err, ErrBusy)
		_, err = s.Docs.Upload(context.Background(), []schema.FileUpload{{Name: "b.go", Content: []byte("package b")}})
		assert.ErrorIs(t, err, ErrBusy)
		_, ok := s.Docs.Result()
		assert.False(t, ok)

		close(release)
		require.NoError(t, <-done)
		latest, ok := s.Docs.Result()
		require.True(t, ok)
		assert.Equal(t, doc, latest)
		client.AssertNumberOfCalls(t, "Document", 1)
	})
}

func TestDownloadName(t *testing.T) {
	tests := map[string]string{
		"foo.py":          "foo_documentation.md",
		"foo":             "foo_documentation.md",
		"archive.tar.gz":  "archive.tar_documentation.md",
		"src/pkg/main.go": "main_documentation.md",
		"":                "code_documentation.md",
		"README.md":       "README_documentation.md",
		"Calculator.java": "Calculator_documentation.md",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, DownloadName(in))
		})
	}
}

func TestExampleScenario(t *testing.T) {
	client := &apiclient.MockClient{}
	client.On("Analyze", mock.Anything, exampleUpload()).Return(exampleResult(), nil).Once()

	question := "What does Calculator.add do?"
	wantReq := schema.QuestionRequest{Question: question, CodeContent: exampleJS, Language: "JavaScript"}
	client.On("Ask", mock.Anything, wantReq).
		Return(schema.QuestionResponse{Question: question, Answer: "It returns a + b.", Language: "JavaScript"}, nil).Once()

	s := newTestSession(client)
	_, err := s.Intake.Submit(context.Background(), []schema.FileUpload{exampleUpload()})
	require.NoError(t, err)

	assert.Equal(t, "JavaScript", s.QA.Language())

	s.QA.SetDraft(question)
	_, err = s.QA.Ask(context.Background(), question)
	require.NoError(t, err)

	log := s.QA.Log()
	require.Len(t, log, 1)
	assert.Equal(t, question, log[0].Question)
	assert.Empty(t, s.QA.Draft())
	client.AssertExpectations(t)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.js")
	require.NoError(t, os.WriteFile(path, []byte(exampleJS), 0o644))

	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, exampleUpload(), file)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}

func TestIsPrecondition(t *testing.T) {
	assert.True(t, IsPrecondition(ErrEmptyQuestion))
	assert.True(t, IsPrecondition(fmt.Errorf("%w: %q", ErrUnsupportedLanguage, "COBOL")))
	assert.False(t, IsPrecondition(errors.New("connection refused")))
	assert.False(t, IsPrecondition(nil))
}
