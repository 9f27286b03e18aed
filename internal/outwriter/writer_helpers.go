package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

var headingStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"})

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// heading styles a section title. Plain text is returned when colors are off.
func heading(title string, colors bool) string {
	if !colors {
		return title
	}
	return headingStyle.Render(title)
}

// colorLabel colours text by class when colors are on.
func colorLabel(text string, class schema.ScoreClass, colors bool) string {
	if !colors {
		return text
	}
	return contract.GetColorLabel(text, class)
}

// truncateText shortens s to maxWidth characters, ending in "...".
func truncateText(s string, maxWidth int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxWidth || maxWidth <= 3 {
		return s
	}
	return string(runes[:maxWidth-3]) + "..."
}

// joinOrDash joins values with ", " or returns "-" for an empty list.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
