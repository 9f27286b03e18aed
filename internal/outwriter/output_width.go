package outwriter

import (
	"os"

	"github.com/codesage/codesage/internal/contract"
	"golang.org/x/term"
)

// GetTerminalWidth returns the configured width override, the detected
// terminal width, or 80 when neither is available.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxDocstringWidth calculates the maximum width of the doc string column
// in the function and class tables.
func GetMaxDocstringWidth(cfg *contract.Config) int {
	// Name + Lines + Params/Methods with borders/padding
	baseWidth := 60

	available := GetTerminalWidth(cfg) - baseWidth
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}
