package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the ASCII art header shown above the progress view
var Banner = []string{
	" __  __ _____ ____   ____ _____      _    _     _     ",
	"|  \\/  | ____|  _ \\ / ___| ____|    / \\  | |   | |    ",
	"| |\\/| |  _| | |_) | |  _|  _|     / _ \\ | |   | |    ",
	"| |  | | |___|  _ <| |_| | |___   / ___ \\| |___| |___ ",
	"|_|  |_|_____|_| \\_\\\\____|_____| /_/   \\_\\_____|_____|",
}

// RenderBanner returns the styled banner as a string
func RenderBanner() string {
	bannerStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	for _, line := range Banner {
		lines = append(lines, bannerStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}
