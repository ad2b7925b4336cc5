package app

import (
	"context"

	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

// eventMsg carries one orchestrator event into the update loop
type eventMsg struct {
	event merge.Event
}

// runDoneMsg is sent once the event channel is closed
type runDoneMsg struct{}

// listenForEvent creates a subscription that listens to the event channel
func listenForEvent(ch <-chan merge.Event) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return runDoneMsg{}
		}
		ev, ok := <-ch
		if !ok {
			return runDoneMsg{}
		}
		return eventMsg{event: ev}
	}
}

// RunFunc integrates branches, reporting progress to observer
type RunFunc func(ctx context.Context, observer merge.Observer) models.RunSummary

// Run shows the progress view while run executes and returns its summary.
// Quitting the view stops the run after the branch in flight; Run always
// waits for the run to finish before returning.
func Run(ctx context.Context, target string, total int, run RunFunc, opts ...tea.ProgramOption) (models.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan merge.Event, 16)
	stopped := make(chan struct{})
	done := make(chan models.RunSummary, 1)

	go func() {
		summary := run(ctx, func(ev merge.Event) {
			select {
			case events <- ev:
			case <-stopped:
			}
		})
		close(events)
		done <- summary
	}()

	p := tea.NewProgram(New(target, total, events, cancel), opts...)
	_, err := p.Run()

	// The view is gone; let the run finish without a reader
	cancel()
	close(stopped)
	summary := <-done
	return summary, err
}
