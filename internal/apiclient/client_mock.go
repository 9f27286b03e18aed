package apiclient

import (
	"context"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of APIClient for testing.
type MockClient struct {
	mock.Mock
}

var _ contract.APIClient = &MockClient{} // Compile-time check

// Analyze implements the APIClient interface.
func (m *MockClient) Analyze(ctx context.Context, file schema.FileUpload) (schema.AnalysisResult, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(schema.AnalysisResult), args.Error(1)
}

// Ask implements the APIClient interface.
func (m *MockClient) Ask(ctx context.Context, req schema.QuestionRequest) (schema.QuestionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(schema.QuestionResponse), args.Error(1)
}

// Document implements the APIClient interface.
func (m *MockClient) Document(ctx context.Context, file schema.FileUpload) (schema.DocumentationResponse, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(schema.DocumentationResponse), args.Error(1)
}

// SupportedExtensions implements the APIClient interface.
func (m *MockClient) SupportedExtensions(ctx context.Context) (schema.SupportedExtensions, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.SupportedExtensions), args.Error(1)
}

// Health implements the APIClient interface.
func (m *MockClient) Health(ctx context.Context) (schema.HealthStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HealthStatus), args.Error(1)
}
