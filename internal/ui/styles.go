package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorCyan       = lipgloss.Color("#00FFFF")
	ColorGreen      = lipgloss.Color("#00FF00")
	ColorYellow     = lipgloss.Color("#FFFF00")
	ColorRed        = lipgloss.Color("#FF0000")
	ColorMagenta    = lipgloss.Color("#FF00FF")
	ColorBlue       = lipgloss.Color("#5555FF")
	ColorLightGreen = lipgloss.Color("#90EE90")
	ColorWhite      = lipgloss.Color("#FFFFFF")
	ColorDarkGray   = lipgloss.Color("8") // ANSI 8
)

func BranchColor(branch string) lipgloss.Color {
	switch branch {
	case "dev", "develop":
		return ColorGreen
	case "staging":
		return ColorYellow
	case "main", "master":
		return ColorRed
	default:
		return ColorWhite
	}
}

// BranchStyle returns a bold style in the branch's color
func BranchStyle(branch string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(BranchColor(branch)).Bold(true)
}
