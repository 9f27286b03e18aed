package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string // "detail" field of the response body, empty when absent
	Status     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope of the service. Detail is either a string or
// a list of validation problems.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationProblem struct {
	Msg string `json:"msg"`
}

// parseError builds an APIError from a non-2xx response.
func parseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}
	apiErr.Detail = decodeDetail(envelope.Detail)
	return apiErr
}

func decodeDetail(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var problems []validationProblem
	if err := json.Unmarshal(raw, &problems); err == nil {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			if p.Msg != "" {
				msgs = append(msgs, p.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// UserMessage returns the text shown to the user for a failed call: the
// response detail when the service supplied one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
