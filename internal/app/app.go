// Package app is the interactive progress view for a merge run
package app

import (
	"math"

	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/models"
	"github.com/wahlandcase/mergeall/internal/ui"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the progress view state
type Model struct {
	target string
	total  int

	screen     Screen
	shouldQuit bool

	// Run state
	events   <-chan merge.Event
	cancel   func()
	current  *merge.Event
	outcomes []models.MergeOutcome
	summary  models.RunSummary
	stopping bool

	spinner    spinner.Model
	pulsePhase float64

	width  int
	height int
}

// New creates a progress model reading orchestrator events from events.
// cancel is called when the user asks to stop the run.
func New(target string, total int, events <-chan merge.Event, cancel func()) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ui.ColorCyan)),
	)
	return Model{
		target:  target,
		total:   total,
		events:  events,
		cancel:  cancel,
		screen:  ScreenProgress,
		spinner: s,
		width:   80,
		height:  24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		listenForEvent(m.events),
	)
}

// Outcomes returns the outcomes received so far
func (m Model) Outcomes() []models.MergeOutcome {
	return m.outcomes
}

// Summary returns the tally of outcomes received so far
func (m Model) Summary() models.RunSummary {
	return merge.Summarize(m.outcomes)
}

// updateAnimations advances the summary header pulse
func (m *Model) updateAnimations() {
	m.pulsePhase = math.Mod(m.pulsePhase+0.08, 2.0*math.Pi)
}
