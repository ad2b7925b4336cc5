package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wahlandcase/mergeall/internal/app"
	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/models"
	"github.com/wahlandcase/mergeall/internal/report"
	"github.com/wahlandcase/mergeall/internal/ui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.requireTargetCheckedOut(); err != nil {
		return err
	}

	if !dryRun && !s.cfg.Merge.AllowDirty {
		clean, err := s.git.IsClean(ctx)
		if err != nil {
			return err
		}
		if !clean {
			return merge.ErrDirtyWorktree
		}
	}

	branches, err := s.candidates(cmd)
	if err != nil {
		return err
	}

	reporter := merge.NewReporter(out)
	reporter.PrintCandidates(branches, s.repo.TargetBranch)
	if len(branches) == 0 {
		fmt.Fprintln(out, "Nothing to merge.")
		return nil
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run: no branches were merged.")
		return nil
	}

	interactive := ui.IsInteractive()
	if !assumeYes && interactive {
		ok, err := ui.Confirm(
			fmt.Sprintf("Merge %d branches into %s?", len(branches), s.repo.TargetBranch),
			"Protected: "+fmt.Sprint(s.protected.List()),
		)
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && !ok) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	snapshot, err := merge.TakeSnapshot(s.repo.Path, s.protected)
	if err != nil {
		return fmt.Errorf("snapshot protected paths: %w", err)
	}

	policy := merge.TheirsExceptProtected{Protected: s.protected}
	opts := merge.Options{
		Target:    s.repo.TargetBranch,
		Protected: s.protected,
		Policy:    policy,
		CommitMessage: func(b models.Branch) string {
			return s.cfg.CommitMessage(b.Ref(), s.repo.TargetBranch)
		},
		Logger: s.logger.Logger,
	}

	started := time.Now()
	var outcomes []models.MergeOutcome
	integrate := func(ctx context.Context, observer merge.Observer) models.RunSummary {
		opts.Observer = observer
		o := merge.NewOrchestrator(s.git, opts)
		summary := o.Run(ctx, branches)
		outcomes = o.Outcomes()
		return summary
	}

	var summary models.RunSummary
	if useTUI && interactive {
		summary, err = app.Run(ctx, s.repo.TargetBranch, len(branches), integrate)
		if err != nil {
			s.logger.Error("progress view failed", "err", err)
		}
		// Leave the per-branch record in the scrollback
		for i, o := range outcomes {
			reporter.Observe(merge.Event{Index: i, Total: len(branches), Branch: o.Branch, State: merge.StateSucceeded, Outcome: &o})
		}
	} else {
		if useTUI {
			s.logger.Warn("not a terminal; showing plain progress")
		}
		summary = integrate(ctx, reporter.Observe)
	}
	finished := time.Now()

	drifted, err := snapshot.Drifted()
	if err != nil {
		return fmt.Errorf("check protected paths: %w", err)
	}

	if reportPath != "" {
		r := report.New(s.logger.RunID, s.repo.DisplayName, s.repo.TargetBranch, policy.Name(),
			s.protected, started, finished, outcomes, summary)
		r.Drifted = drifted
		if err := r.Write(reportPath); err != nil {
			return err
		}
		s.logger.Info("report written", "path", reportPath)
	}

	reporter.PrintSummary(summary)
	if skipped := len(branches) - summary.Total(); skipped > 0 {
		fmt.Fprintf(out, "Not attempted: %d (interrupted)\n", skipped)
	}

	if len(drifted) > 0 {
		s.logger.Error("protected paths changed during run", "paths", drifted)
		return fmt.Errorf("protected paths changed during run: %v", drifted)
	}
	if summary.HasFailures() {
		return merge.ErrBranchesFailed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}
