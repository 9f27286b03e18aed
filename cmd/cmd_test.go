package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleJS = "class Calculator {\n  add(a, b) { return a + b; }\n}\n"

// fakeAPI answers every endpoint with fixed bodies and counts questions.
func fakeAPI(t *testing.T, questions *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/supported-extensions", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, schema.SupportedExtensions{Extensions: []string{".js"}, MaxFileSizeMB: 5})
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, schema.AnalysisResult{Filename: "example.js", Language: "JavaScript", CodePreview: exampleJS})
	})
	mux.HandleFunc("/question", func(w http.ResponseWriter, r *http.Request) {
		questions.Add(1)
		reply(w, schema.QuestionResponse{Question: r.FormValue("question"), Answer: "Adds.", Language: r.FormValue("language")})
	})
	mux.HandleFunc("/documentation", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, schema.DocumentationResponse{Filename: "example.js", Language: "JavaScript", Documentation: "# Calculator"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// useConfig swaps the package config for one test.
func useConfig(t *testing.T, c *contract.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func writeExample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.js")
	require.NoError(t, os.WriteFile(path, []byte(exampleJS), 0o644))
	return path
}

func TestPanelError(t *testing.T) {
	assert.Same(t, core.ErrEmptyQuestion, panelError(core.ErrEmptyQuestion, core.QuestionFallback))

	err := panelError(&apiclient.APIError{StatusCode: 400, Detail: "Question cannot be empty"}, core.QuestionFallback)
	assert.EqualError(t, err, "Question cannot be empty")

	err = panelError(errors.New("dial tcp: connection refused"), core.QuestionFallback)
	assert.EqualError(t, err, core.QuestionFallback)
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "custom.db", sqlitePath("custom.db", "default.db"))
	assert.Equal(t, "default.db", sqlitePath("", "default.db"))
}

func TestExecuteDocsWritesOutputFile(t *testing.T) {
	var questions atomic.Int32
	srv := fakeAPI(t, &questions)
	out := filepath.Join(t.TempDir(), "docs.md")
	useConfig(t, &contract.Config{APIURL: srv.URL, Output: schema.TextOut, OutputFile: out})

	require.NoError(t, executeDocs(context.Background(), writeExample(t), false, false))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Calculator", string(content))
}

func TestExecuteDocsRejectsUnsupportedFile(t *testing.T) {
	var questions atomic.Int32
	srv := fakeAPI(t, &questions)
	useConfig(t, &contract.Config{APIURL: srv.URL, Output: schema.TextOut})

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := executeDocs(context.Background(), path, false, true)
	assert.ErrorIs(t, err, core.ErrUnsupportedExtension)
}

func TestExecuteAskInteractive(t *testing.T) {
	var questions atomic.Int32
	srv := fakeAPI(t, &questions)
	useConfig(t, &contract.Config{
		APIURL:     srv.URL,
		Output:     schema.JSONOut,
		OutputFile: filepath.Join(t.TempDir(), "answer.json"),
		Language:   "TypeScript",
	})

	in := strings.NewReader("What is add?\n\n   \nIs it pure?\nexit\nNever asked\n")
	require.NoError(t, executeAsk(context.Background(), writeExample(t), "First?", true, in))
	assert.Equal(t, int32(3), questions.Load())

	raw, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var last schema.QuestionResponse
	require.NoError(t, json.Unmarshal(raw, &last))
	assert.Equal(t, "Is it pure?", last.Question)
	assert.Equal(t, "TypeScript", last.Language)
}
