package merge

import (
	"fmt"
	"io"
	"strings"

	"github.com/wahlandcase/mergeall/internal/models"
	"github.com/wahlandcase/mergeall/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// Summarize counts successes and failures. Succeeded + Failed always equals len(outcomes).
func Summarize(outcomes []models.MergeOutcome) models.RunSummary {
	var s models.RunSummary
	for _, o := range outcomes {
		if o.Status.IsSuccess() {
			s.Succeeded++
			if o.Status == models.SucceededWithResolution {
				s.Resolved++
			}
		} else {
			s.Failed++
		}
	}
	return s
}

// Reporter prints a running log of branch progress and the final tally
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// PrintCandidates prints the branches a run will merge, in order
func (r *Reporter) PrintCandidates(branches []models.Branch, target string) {
	fmt.Fprintf(r.out, "Found %d branches to merge into %s.\n", len(branches), ui.BranchStyle(target).Render(target))
	for _, b := range branches {
		fmt.Fprintf(r.out, "  %s\n", ui.BranchStyle(b.Name).Render(b.Ref()))
	}
}

// Observe prints progress lines; it is an Observer
func (r *Reporter) Observe(ev Event) {
	ref := lipgloss.NewStyle().Foreground(ui.ColorCyan).Render(ev.Branch.Ref())
	counter := lipgloss.NewStyle().Foreground(ui.ColorDarkGray).Render(fmt.Sprintf("[%d/%d]", ev.Index+1, ev.Total))

	if ev.Outcome != nil {
		r.printOutcome(*ev.Outcome, ref, counter)
		return
	}

	switch ev.State {
	case StateAttempting:
		fmt.Fprintf(r.out, "%s Merging %s...\n", counter, ref)
	case StateConflicted:
		warn := lipgloss.NewStyle().Foreground(ui.ColorYellow)
		fmt.Fprintf(r.out, "%s %s\n", counter, warn.Render(fmt.Sprintf("Conflict merging %s (%s). Attempting to resolve...",
			ev.Branch.Ref(), strings.Join(ev.Conflicts, ", "))))
	case StateGuarding:
		warn := lipgloss.NewStyle().Foreground(ui.ColorYellow)
		fmt.Fprintf(r.out, "%s %s\n", counter, warn.Render("Protected paths changed by "+ev.Branch.Ref()+". Restoring..."))
	case StateAborting:
		fmt.Fprintf(r.out, "%s Aborting merge of %s...\n", counter, ref)
	}
}

func (r *Reporter) printOutcome(o models.MergeOutcome, ref, counter string) {
	icon, color := ui.StatusIcon(o.Status.String())
	style := lipgloss.NewStyle().Foreground(color)

	var text string
	switch o.Status {
	case models.Succeeded:
		text = "Successfully merged " + ref
	case models.SucceededWithResolution:
		text = "Successfully resolved and merged " + ref
	case models.Failed:
		text = "Failed to merge " + ref
	}
	fmt.Fprintf(r.out, "%s %s %s\n", counter, style.Render(icon), text)

	if o.Message != "" {
		fmt.Fprintf(r.out, "      %s\n", style.Render(o.Message))
	}
}

// PrintSummary prints the final tally
func (r *Reporter) PrintSummary(s models.RunSummary) {
	okStyle := lipgloss.NewStyle().Foreground(ui.ColorGreen).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
	if s.Failed > 0 {
		failStyle = lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Merge process complete.")
	fmt.Fprintf(r.out, "Successful merges: %s\n", okStyle.Render(fmt.Sprint(s.Succeeded)))
	fmt.Fprintf(r.out, "Failed merges: %s\n", failStyle.Render(fmt.Sprint(s.Failed)))
}
