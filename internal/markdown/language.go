package markdown

import (
	"regexp"
	"strings"
)

// Guessed language names. They double as chroma lexer names.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangJava       = "java"
	LangText       = "text"
)

// blockCodeMinLength is the length above which untagged code is shown as a block.
const blockCodeMinLength = 50

var (
	pythonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*def \w+\s*\(`),
		regexp.MustCompile(`(?m)^\s*class \w+[^{\n]*:\s*$`),
		regexp.MustCompile(`(?m)^\s*import [\w.]+(?:\s+as \w+)?\s*$`),
		regexp.MustCompile(`(?m)^\s*from [\w.]+ import `),
		regexp.MustCompile(`@dataclass`),
	}

	javascriptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bfunction\b`),
		regexp.MustCompile(`(?m)^\s*(?:const|let) `),
		regexp.MustCompile(`(?m)^\s*export `),
		regexp.MustCompile(`(?m)^\s*import\s.+\sfrom\s+['"]`),
		regexp.MustCompile(`(?m)^\s*interface \w+`),
		regexp.MustCompile(`=>`),
	}

	javaVisibilityRe = regexp.MustCompile(`\b(?:public|private)\b`)
	javaClassRe      = regexp.MustCompile(`\bclass\s+\w+[^{]*\{`)
)

// IsBlockCode reports whether code should be rendered as a block rather than
// inline: it spans lines, is longer than 50 characters, or carries a language tag.
func IsBlockCode(code, lang string) bool {
	return strings.Contains(code, "\n") || len([]rune(code)) > blockCodeMinLength || strings.TrimSpace(lang) != ""
}

// GuessLanguage picks a highlighting language for untagged code by simple
// string patterns. It is a best-effort heuristic, not a classifier.
func GuessLanguage(code string) string {
	switch {
	case matchAny(pythonPatterns, code):
		return LangPython
	case matchAny(javascriptPatterns, code):
		return LangJavaScript
	case javaVisibilityRe.MatchString(code) && javaClassRe.MatchString(code):
		return LangJava
	default:
		return LangText
	}
}

func matchAny(patterns []*regexp.Regexp, code string) bool {
	for _, p := range patterns {
		if p.MatchString(code) {
			return true
		}
	}
	return false
}
