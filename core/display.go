package core

import (
	"github.com/codesage/codesage/schema"
)

// Display limits for the analysis view.
const (
	MaxDisplayedItems  = 10
	MaxDocstringLength = 100
)

// ComplexityClass colours a complexity score: below 3 is green, below 6 is yellow, else red.
func ComplexityClass(score float64) schema.ScoreClass {
	switch {
	case score < 3:
		return schema.ScoreGreen
	case score < 6:
		return schema.ScoreYellow
	default:
		return schema.ScoreRed
	}
}

// QualityClass colours a quality score: 8 and up is green, 6 and up is yellow,
// else red. A missing score is neutral.
func QualityClass(score *float64) schema.ScoreClass {
	switch {
	case score == nil:
		return schema.ScoreNeutral
	case *score >= 8:
		return schema.ScoreGreen
	case *score >= 6:
		return schema.ScoreYellow
	default:
		return schema.ScoreRed
	}
}

// TruncateDocstring shortens s to MaxDocstringLength characters plus "...".
func TruncateDocstring(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDocstringLength {
		return s
	}
	return string(runes[:MaxDocstringLength]) + "..."
}

// AnalysisView is an AnalysisResult prepared for display.
type AnalysisView struct {
	Result          schema.AnalysisResult
	ComplexityClass schema.ScoreClass
	QualityClass    schema.ScoreClass
	Functions       []schema.FunctionInfo // first MaxDisplayedItems, doc strings truncated
	Classes         []schema.ClassInfo    // first MaxDisplayedItems, doc strings truncated
	HiddenFunctions int
	HiddenClasses   int
}

// BuildAnalysisView applies the display rules to result.
func BuildAnalysisView(result schema.AnalysisResult) AnalysisView {
	basic := result.BasicAnalysis
	view := AnalysisView{
		Result:          result,
		ComplexityClass: ComplexityClass(basic.ComplexityScore),
		QualityClass:    QualityClass(result.AIEnhancement.CodeQualityScore),
	}

	functions := basic.Functions
	if len(functions) > MaxDisplayedItems {
		view.HiddenFunctions = len(functions) - MaxDisplayedItems
		functions = functions[:MaxDisplayedItems]
	}
	view.Functions = make([]schema.FunctionInfo, len(functions))
	for i, fn := range functions {
		fn.Docstring = TruncateDocstring(fn.Docstring)
		view.Functions[i] = fn
	}

	classes := basic.Classes
	if len(classes) > MaxDisplayedItems {
		view.HiddenClasses = len(classes) - MaxDisplayedItems
		classes = classes[:MaxDisplayedItems]
	}
	view.Classes = make([]schema.ClassInfo, len(classes))
	for i, cls := range classes {
		cls.Docstring = TruncateDocstring(cls.Docstring)
		view.Classes[i] = cls
	}

	return view
}
