package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/models"
	"github.com/wahlandcase/mergeall/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// contentWidth returns the usable content width, adapting to terminal size
func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

// View renders the application
func (m Model) View() string {
	if m.shouldQuit {
		return ""
	}

	var sections []string

	// Banner
	sections = append(sections, ui.RenderBanner())
	sections = append(sections, "")
	sections = append(sections, ui.BranchFlow(m.total, m.target))
	sections = append(sections, "")

	var content string
	switch m.screen {
	case ScreenProgress:
		content = m.renderProgress()
	case ScreenSummary:
		content = m.renderSummary()
	}

	outerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMagenta).
		Width(m.contentWidth()).
		Padding(1, 2)
	sections = append(sections, outerBox.Render(content))

	// Status bar
	sections = append(sections, "")
	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n")
}

// stateText describes what the orchestrator is doing in a state
func stateText(ev merge.Event) string {
	switch ev.State {
	case merge.StateAttempting:
		return "Merging..."
	case merge.StateMerged:
		return "Checking protected paths..."
	case merge.StateConflicted, merge.StateResolving:
		return fmt.Sprintf("Resolving %d conflicted path(s)...", len(ev.Conflicts))
	case merge.StateGuarding:
		return "Restoring protected paths..."
	case merge.StateResolutionFailed, merge.StateAborting:
		return "Aborting merge..."
	default:
		return ev.State.String()
	}
}

func (m Model) renderProgress() string {
	var lines []string

	countStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite)
	header := fmt.Sprintf("Merging Branches %s", countStyle.Render(fmt.Sprintf("(%d/%d)", len(m.outcomes), m.total)))
	lines = append(lines, ui.SectionHeader(header, ui.ColorMagenta))
	lines = append(lines, "")
	lines = append(lines, "   "+ui.ProgressBar(len(m.outcomes), m.total, 30))
	lines = append(lines, "")

	branchStyle := lipgloss.NewStyle().Foreground(ui.ColorYellow).Bold(true)
	stepStyle := lipgloss.NewStyle().Foreground(ui.ColorWhite)

	if m.current != nil {
		lines = append(lines, fmt.Sprintf("   %s %s",
			m.spinner.View(),
			branchStyle.Render(m.current.Branch.Ref()),
		))
		lines = append(lines, fmt.Sprintf("      → %s", stepStyle.Render(stateText(*m.current))))
		lines = append(lines, "")
	}

	if m.stopping {
		warn := lipgloss.NewStyle().Foreground(ui.ColorYellow)
		lines = append(lines, "   "+warn.Render("Stopping after the current branch..."))
		lines = append(lines, "")
	}

	if len(m.outcomes) > 0 {
		lines = append(lines, ui.SectionHeader("Completed", ui.ColorWhite))
		lines = append(lines, "")
		lines = append(lines, m.renderOutcomes()...)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderOutcomes() []string {
	var lines []string
	refStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan)

	for _, o := range m.outcomes {
		icon, color := ui.StatusIcon(o.Status.String())
		statusStyle := lipgloss.NewStyle().Foreground(color)

		statusText := outcomeText(o)
		lines = append(lines, fmt.Sprintf("   %s %s: %s",
			statusStyle.Render(icon),
			refStyle.Render(o.Branch.Ref()),
			statusStyle.Render(statusText),
		))
	}
	return lines
}

func outcomeText(o models.MergeOutcome) string {
	switch o.Status {
	case models.Succeeded:
		if o.Message != "" {
			return o.Message
		}
		return "merged"
	case models.SucceededWithResolution:
		return o.Message
	default:
		// Only the first line of a joined error fits
		msg, _, _ := strings.Cut(o.Message, "\n")
		return msg
	}
}

func (m Model) renderSummary() string {
	var lines []string
	s := m.summary

	var headerMsg string
	var headerColor lipgloss.Color
	var icon string

	remaining := m.total - s.Total()

	switch {
	case s.Total() == 0:
		headerMsg = "No branches processed"
		headerColor = ui.ColorYellow
		icon = "⊘"
	case s.Failed == 0 && remaining > 0:
		headerMsg = fmt.Sprintf("Run stopped: %d of %d branches merged", s.Succeeded, m.total)
		headerColor = ui.ColorYellow
		icon = "⊘"
	case s.Failed == 0:
		headerMsg = fmt.Sprintf("All %d branches merged into %s", s.Succeeded, m.target)
		headerColor = ui.ColorGreen
		icon = "✓"
	default:
		headerMsg = fmt.Sprintf("%d of %d branches failed to merge", s.Failed, s.Total())
		headerColor = ui.ColorRed
		icon = "✗"
	}

	// Pulsing icon on success
	iconColor := headerColor
	if s.Failed == 0 && s.Total() > 0 && remaining == 0 && (math.Sin(m.pulsePhase)+1.0)/2.0 <= 0.5 {
		iconColor = ui.ColorLightGreen
	}

	iconStyle := lipgloss.NewStyle().Foreground(iconColor).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	lines = append(lines, fmt.Sprintf("   %s %s", iconStyle.Render(icon), headerStyle.Render(headerMsg)))
	lines = append(lines, "")

	lines = append(lines, m.renderOutcomes()...)
	if len(m.outcomes) > 0 {
		lines = append(lines, "")
	}

	if remaining > 0 {
		warn := lipgloss.NewStyle().Foreground(ui.ColorYellow)
		lines = append(lines, "   "+warn.Render(fmt.Sprintf("%d branches not attempted (run stopped)", remaining)))
		lines = append(lines, "")
	}

	okStyle := lipgloss.NewStyle().Foreground(ui.ColorGreen).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
	if s.Failed > 0 {
		failStyle = lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true)
	}
	lines = append(lines, fmt.Sprintf("   Successful merges: %s", okStyle.Render(fmt.Sprint(s.Succeeded))))
	lines = append(lines, fmt.Sprintf("   Failed merges: %s", failStyle.Render(fmt.Sprint(s.Failed))))

	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	var hints []string

	switch m.screen {
	case ScreenProgress:
		if m.stopping {
			hints = []string{ui.KeyBinding("q", "Quit now", ui.ColorRed)}
		} else {
			hints = []string{ui.KeyBinding("q", "Stop after current branch", ui.ColorYellow)}
		}
	case ScreenSummary:
		hints = []string{
			ui.KeyBinding("Enter", "Done", ui.ColorGreen),
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	}

	return "  " + strings.Join(hints, "  │  ")
}
