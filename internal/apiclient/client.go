// Package apiclient wraps the REST calls of the remote analysis service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// Endpoint paths relative to the configured base URL.
const (
	analyzePath       = "/analyze"
	questionPath      = "/question"
	documentationPath = "/documentation"
	extensionsPath    = "/supported-extensions"
	healthPath        = "/health"
)

// Client issues requests against the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contract.APIClient = &Client{} // Compile-time check

// NewClient creates a client for baseURL. A zero timeout disables the client deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a client that sends requests through httpClient.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze uploads file as the multipart "file" field of POST /analyze.
func (c *Client) Analyze(ctx context.Context, file schema.FileUpload) (schema.AnalysisResult, error) {
	var result schema.AnalysisResult
	body, contentType, err := fileForm(file)
	if err != nil {
		return result, err
	}
	err = c.do(ctx, http.MethodPost, c.baseURL+analyzePath, body, contentType, &result)
	return result, err
}

// Ask posts the question, code and language as multipart form fields of POST /question.
func (c *Client) Ask(ctx context.Context, req schema.QuestionRequest) (schema.QuestionResponse, error) {
	var result schema.QuestionResponse
	language := req.Language
	if language == "" {
		language = schema.GenericLanguage
	}
	body, contentType, err := fieldsForm(map[string]string{
		"question":     req.Question,
		"code_content": req.CodeContent,
		"language":     language,
	})
	if err != nil {
		return result, err
	}
	err = c.do(ctx, http.MethodPost, c.baseURL+questionPath, body, contentType, &result)
	return result, err
}

// Document uploads file as the multipart "file" field of POST /documentation.
func (c *Client) Document(ctx context.Context, file schema.FileUpload) (schema.DocumentationResponse, error) {
	var result schema.DocumentationResponse
	body, contentType, err := fileForm(file)
	if err != nil {
		return result, err
	}
	err = c.do(ctx, http.MethodPost, c.baseURL+documentationPath, body, contentType, &result)
	return result, err
}

// SupportedExtensions fetches GET /supported-extensions.
func (c *Client) SupportedExtensions(ctx context.Context) (schema.SupportedExtensions, error) {
	var result schema.SupportedExtensions
	err := c.do(ctx, http.MethodGet, c.baseURL+extensionsPath, nil, "", &result)
	return result, err
}

// Health fetches GET /health from the service root, outside the versioned API prefix.
func (c *Client) Health(ctx context.Context) (schema.HealthStatus, error) {
	var result schema.HealthStatus
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return result, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	healthURL := u.ResolveReference(&url.URL{Path: healthPath})
	err = c.do(ctx, http.MethodGet, healthURL.String(), nil, "", &result)
	return result, err
}

// do sends one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// fileForm encodes a single file upload under the "file" field.
func fileForm(file schema.FileUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(file.Name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// fieldsForm encodes plain multipart form fields.
func fieldsForm(fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
