// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/cohort/internal/contract"
	"golang.org/x/term"
)

// getTermWidth returns the width override, the detected terminal width, or 80.
func getTermWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxSliceWidth calculates the maximum width for the slice column in table output
// based on terminal width and the fixed columns around it.
func getMaxSliceWidth(cfg *contract.Config) int {
	// Rank + Type + Method + Window + Return + N + Value, plus borders and padding
	baseWidth := 95

	available := getTermWidth(cfg) - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
