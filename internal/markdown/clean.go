// Package markdown cleans and renders the Markdown returned by the analysis service.
package markdown

import (
	"regexp"
	"strings"
)

var (
	// A rule at the very end of the text.
	trailingRuleRe = regexp.MustCompile(`(?:^|\n)[ \t]*-{3,}[ \t]*\s*$`)

	// A rule on its own line with blank lines on both sides.
	standaloneRuleRe = regexp.MustCompile(`\n[ \t]*\n[ \t]*-{3,}[ \t]*\n[ \t]*\n`)

	// A rule immediately followed by a heading.
	ruleBeforeHeadingRe = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*\n(\s*#)`)

	// A rule at the very start of the text.
	leadingRuleRe = regexp.MustCompile(`^\s*-{3,}[ \t]*(?:\n|$)`)

	excessNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Clean strips decorative horizontal rules, collapses runs of blank lines and
// trims the result. Clean(Clean(s)) == Clean(s) for every s.
func Clean(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	for {
		next := cleanOnce(src)
		if next == src {
			return next
		}
		src = next
	}
}

// cleanOnce applies every rewrite a single time. Each rewrite only ever
// shortens its input, so iterating to a fixed point terminates.
func cleanOnce(src string) string {
	out := trailingRuleRe.ReplaceAllString(src, "")
	out = standaloneRuleRe.ReplaceAllString(out, "\n\n")
	out = ruleBeforeHeadingRe.ReplaceAllString(out, "$1")
	out = leadingRuleRe.ReplaceAllString(out, "")
	out = excessNewlinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
