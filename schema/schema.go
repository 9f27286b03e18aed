// Package schema has models and constants shared by all parts of codesage.
package schema

// FunctionInfo describes a function detected by the backend.
type FunctionInfo struct {
	Name      string   `json:"name"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Params    []string `json:"params,omitempty"`
	Docstring string   `json:"docstring,omitempty"`
}

// ClassInfo describes a class detected by the backend.
type ClassInfo struct {
	Name      string   `json:"name"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Methods   []string `json:"methods,omitempty"`
	Docstring string   `json:"docstring,omitempty"`
}

// BasicAnalysis is the structural part of an analysis.
type BasicAnalysis struct {
	Language        string         `json:"language"`
	ComplexityScore float64        `json:"complexity_score"`
	Functions       []FunctionInfo `json:"functions"`
	Classes         []ClassInfo    `json:"classes"`
	Imports         []string       `json:"imports"`
	Summary         string         `json:"summary"`
	Suggestions     []string       `json:"suggestions"`
	Metrics         map[string]any `json:"metrics"`
}

// AIEnhancement is the AI-generated part of an analysis.
// A nil CodeQualityScore means the backend produced no score.
type AIEnhancement struct {
	AIInsights          string   `json:"ai_insights"`
	EnhancedSuggestions []string `json:"enhanced_suggestions"`
	CodeQualityScore    *float64 `json:"code_quality_score"`
}

// AnalysisResult is the response of the analyze call. It is immutable once received.
type AnalysisResult struct {
	Filename      string        `json:"filename"`
	Language      string        `json:"language"`
	FileExtension string        `json:"file_extension"`
	BasicAnalysis BasicAnalysis `json:"basic_analysis"`
	AIEnhancement AIEnhancement `json:"ai_enhancement"`
	CodePreview   string        `json:"code_preview"`
}

// QuestionRequest carries the form fields of the question call.
type QuestionRequest struct {
	Question    string
	CodeContent string
	Language    string
}

// QuestionResponse is one entry of the conversation log.
type QuestionResponse struct {
	Answer   string `json:"answer"`
	Question string `json:"question"`
	Language string `json:"language"`
}

// DocumentationResponse is the response of the documentation call.
type DocumentationResponse struct {
	Filename      string `json:"filename"`
	Language      string `json:"language"`
	Documentation string `json:"documentation"`
}

// SupportedExtensions is the response of the supported-extensions call.
type SupportedExtensions struct {
	Extensions    []string `json:"extensions"`
	MaxFileSizeMB float64  `json:"max_file_size_mb"`
}

// HealthStatus is the response of the backend health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// FileUpload is a transient reference to a file picked by the user.
type FileUpload struct {
	Name    string
	Content []byte
}

// Text returns the file content as text.
func (f FileUpload) Text() string {
	return string(f.Content)
}
