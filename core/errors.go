package core

import "errors"

// Precondition failures. No request is issued when one of these is returned.
var (
	ErrEmptyQuestion        = errors.New("question must not be empty")
	ErrNoCode               = errors.New("no code to ask about. Analyze a file or provide code content")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrSingleFile           = errors.New("exactly one file must be provided")
	ErrFileTooLarge         = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedLanguage  = errors.New("unsupported question language")
	ErrNoAnalysis           = errors.New("no analyzed file. Analyze a file first")
	ErrBusy                 = errors.New("a request is already in flight")
)

// Fallback messages shown when the backend gives no detail.
const (
	AnalyzeFallback  = "Failed to analyze file"
	QuestionFallback = "Failed to get answer"
	DocsFallback     = "Failed to generate documentation"
)

// IsPrecondition reports whether err was raised before any request was issued.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrEmptyQuestion, ErrNoCode, ErrUnsupportedExtension, ErrSingleFile,
		ErrFileTooLarge, ErrUnsupportedLanguage, ErrNoAnalysis, ErrBusy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
