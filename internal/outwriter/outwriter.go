// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints an analysis using the configured output format.
func (ow *OutWriter) WriteAnalysis(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return PrintAnalysisResult(result, cfg, duration)
}

// WriteAnswer prints a question/answer pair using the configured output format.
func (ow *OutWriter) WriteAnswer(resp schema.QuestionResponse, cfg *contract.Config) error {
	return PrintAnswer(resp, cfg)
}

// WriteDocumentation prints documentation to the terminal, or saves it to path when set.
func (ow *OutWriter) WriteDocumentation(doc schema.DocumentationResponse, cfg *contract.Config, path string) error {
	return PrintDocumentation(doc, cfg, path)
}

// WriteExtensions prints the backend extensions using the configured output format.
func (ow *OutWriter) WriteExtensions(ext schema.SupportedExtensions, cfg *contract.Config) error {
	return PrintSupportedExtensions(ext, cfg)
}

// WriteHealth prints the backend health using the configured output format.
func (ow *OutWriter) WriteHealth(health schema.HealthStatus, cfg *contract.Config) error {
	return PrintHealth(health, cfg.APIURL, cfg)
}

// WriteHistory prints stored history using the configured output format.
func (ow *OutWriter) WriteHistory(conversations []schema.ConversationRecord, docs []schema.DocumentationRecord, cfg *contract.Config) error {
	return PrintHistory(conversations, docs, cfg)
}
