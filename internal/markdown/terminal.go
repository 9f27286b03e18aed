package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column at which terminal output wraps.
const DefaultWordWrap = 100

// RenderTerminal cleans src and renders it for a terminal. When colors is false
// the plain "notty" style is used.
func RenderTerminal(src string, width int, colors bool) (string, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}
	styleOpt := glamour.WithAutoStyle()
	if !colors {
		styleOpt = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := r.Render(Clean(src))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
