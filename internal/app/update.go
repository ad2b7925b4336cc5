package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateAnimations()
		return m, cmd

	case eventMsg:
		return m.handleEvent(msg)

	case runDoneMsg:
		m.current = nil
		m.summary = m.Summary()
		m.screen = ScreenSummary
		return m, nil
	}

	return m, nil
}

func (m Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	ev := msg.event
	if ev.Total > 0 {
		m.total = ev.Total
	}

	if ev.Outcome != nil {
		m.outcomes = append(m.outcomes, *ev.Outcome)
		m.current = nil
	} else {
		m.current = &ev
	}

	// Continue listening for more events
	return m, listenForEvent(m.events)
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenProgress:
		return m.handleProgressKey(msg)
	case ScreenSummary:
		return m.handleSummaryKey(msg)
	}
	return m, nil
}

func (m Model) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		// Second request quits without waiting for the branch in flight
		if m.stopping {
			m.shouldQuit = true
			return m, tea.Quit
		}
		m.stopping = true
		if m.cancel != nil {
			m.cancel()
		}
	}
	return m, nil
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "enter":
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}
