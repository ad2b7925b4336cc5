package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ConfigureOutput sets the color profile lipgloss renders with for w.
// Colors are dropped when disabled, when NO_COLOR is set, or when w is not a terminal.
func ConfigureOutput(w io.Writer, color bool) {
	// Warp reports a TERM that makes termenv query the terminal and stall
	if os.Getenv("TERM_PROGRAM") == "WarpTerminal" {
		os.Setenv("TERM", "dumb")
		os.Setenv("COLORTERM", "truecolor")
	}

	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	output := termenv.NewOutput(w)
	lipgloss.SetColorProfile(output.EnvColorProfile())
}
