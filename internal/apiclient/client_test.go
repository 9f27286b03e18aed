package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1", 0)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestAnalyze(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "example.js", header.Filename)
		assert.Equal(t, "class Calculator {}", string(content))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"filename":       "example.js",
			"language":       "JavaScript",
			"file_extension": ".js",
			"basic_analysis": map[string]any{"language": "JavaScript", "complexity_score": 2.0},
			"ai_enhancement": map[string]any{"ai_insights": "ok", "code_quality_score": 8.5},
			"code_preview":   "class Calculator {}",
		})
	})

	result, err := client.Analyze(context.Background(), schema.FileUpload{Name: "src/example.js", Content: []byte("class Calculator {}")})
	require.NoError(t, err)
	assert.Equal(t, "example.js", result.Filename)
	assert.Equal(t, "JavaScript", result.Language)
	require.NotNil(t, result.AIEnhancement.CodeQualityScore)
	assert.Equal(t, 8.5, *result.AIEnhancement.CodeQualityScore)
}

func TestAsk(t *testing.T) {
	t.Run("sends all form fields", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/question", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "What does add do?", r.FormValue("question"))
			assert.Equal(t, "def add(a, b): return a + b", r.FormValue("code_content"))
			assert.Equal(t, "Python", r.FormValue("language"))
			writeJSON(t, w, http.StatusOK, schema.QuestionResponse{
				Answer:   "It adds.",
				Question: r.FormValue("question"),
				Language: r.FormValue("language"),
			})
		})

		resp, err := client.Ask(context.Background(), schema.QuestionRequest{
			Question:    "What does add do?",
			CodeContent: "def add(a, b): return a + b",
			Language:    "Python",
		})
		require.NoError(t, err)
		assert.Equal(t, "It adds.", resp.Answer)
		assert.Equal(t, "What does add do?", resp.Question)
	})

	t.Run("empty language defaults to generic", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, schema.GenericLanguage, r.FormValue("language"))
			writeJSON(t, w, http.StatusOK, schema.QuestionResponse{Answer: "a", Question: "q", Language: schema.GenericLanguage})
		})

		_, err := client.Ask(context.Background(), schema.QuestionRequest{Question: "q", CodeContent: "x"})
		require.NoError(t, err)
	})
}

func TestDocument(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documentation", r.URL.Path)
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		writeJSON(t, w, http.StatusOK, schema.DocumentationResponse{
			Filename:      header.Filename,
			Language:      "Python",
			Documentation: "# Docs",
		})
	})

	resp, err := client.Document(context.Background(), schema.FileUpload{Name: "foo.py", Content: []byte("x = 1")})
	require.NoError(t, err)
	assert.Equal(t, "foo.py", resp.Filename)
	assert.Equal(t, "# Docs", resp.Documentation)
}

func TestSupportedExtensions(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/supported-extensions", r.URL.Path)
		writeJSON(t, w, http.StatusOK, schema.SupportedExtensions{Extensions: []string{".py", ".go"}, MaxFileSizeMB: 10})
	})

	resp, err := client.SupportedExtensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{".py", ".go"}, resp.Extensions)
	assert.Equal(t, 10.0, resp.MaxFileSizeMB)
}

func TestHealthUsesServiceRoot(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(t, w, http.StatusOK, schema.HealthStatus{Status: "healthy", Service: "codesage-backend", Version: "1.0.0"})
	})

	resp, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantMsg    string
	}{
		{
			name:       "string detail",
			status:     http.StatusBadRequest,
			body:       `{"detail": "File type .exe not supported"}`,
			wantDetail: "File type .exe not supported",
			wantMsg:    "File type .exe not supported",
		},
		{
			name:       "validation detail list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail": [{"loc": ["body", "question"], "msg": "field required"}]}`,
			wantDetail: "field required",
			wantMsg:    "field required",
		},
		{
			name:    "no body",
			status:  http.StatusInternalServerError,
			body:    ``,
			wantMsg: "Failed to analyze file",
		},
		{
			name:    "non json body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantMsg: "Failed to analyze file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Analyze(context.Background(), schema.FileUpload{Name: "a.py", Content: []byte("x")})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantMsg, UserMessage(err, "Failed to analyze file"))
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(baseURL, time.Second)
	_, err := client.SupportedExtensions(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "Failed to load", UserMessage(err, "Failed to load"))
}

func TestContextCancellation(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, schema.SupportedExtensions{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SupportedExtensions(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBaseURLTrimmed(t *testing.T) {
	client := NewClient("http://localhost:8000/api/v1/", 0)
	assert.Equal(t, "http://localhost:8000/api/v1", client.BaseURL())
}
