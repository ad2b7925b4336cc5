package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wahlandcase/mergeall/internal/models"
)

// Event is published on every state change of a branch
type Event struct {
	// Index of the branch in the run (0-based) and number of branches in the run
	Index int
	Total int
	// Branch being processed
	Branch models.Branch
	// State just entered
	State BranchState
	// Err is the cause when entering ResolutionFailed or Aborting
	Err error
	// Conflicts reported by git when entering Conflicted
	Conflicts []string
	// Outcome is set once the branch reaches a terminal state
	Outcome *models.MergeOutcome
}

// Observer receives events synchronously from the orchestrator
type Observer func(Event)

// Options configures an Orchestrator
type Options struct {
	// Target is the branch being merged into, used in messages
	Target    string
	Protected models.ProtectedPaths
	// Policy resolves conflicted merges; defaults to TheirsExceptProtected
	Policy ConflictPolicy
	// CommitMessage renders the resolution commit message for a branch
	CommitMessage func(models.Branch) string
	Observer      Observer
	Logger        *slog.Logger
}

// Orchestrator merges branches one at a time into the current branch
type Orchestrator struct {
	backend  Backend
	opts     Options
	logger   *slog.Logger
	outcomes []models.MergeOutcome
}

// NewOrchestrator creates an Orchestrator driving backend
func NewOrchestrator(backend Backend, opts Options) *Orchestrator {
	if opts.Policy == nil {
		opts.Policy = TheirsExceptProtected{Protected: opts.Protected}
	}
	if opts.CommitMessage == nil {
		target := opts.Target
		opts.CommitMessage = func(b models.Branch) string {
			return fmt.Sprintf("Merge %s into %s with conflict resolution", b.Ref(), target)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{
		backend: backend,
		opts:    opts,
		logger:  logger.With("policy", opts.Policy.Name()),
	}
}

// Outcomes returns the outcome of every branch processed so far, in order
func (o *Orchestrator) Outcomes() []models.MergeOutcome {
	out := make([]models.MergeOutcome, len(o.outcomes))
	copy(out, o.outcomes)
	return out
}

// Run integrates branches in order. A branch's failure never stops the run.
// Cancelling ctx stops the run between branches; the branch in flight always
// reaches a terminal state first.
func (o *Orchestrator) Run(ctx context.Context, branches []models.Branch) models.RunSummary {
	for i, branch := range branches {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("run interrupted", "remaining", len(branches)-i, "err", err)
			break
		}
		outcome := o.integrate(context.WithoutCancel(ctx), i, len(branches), branch)
		o.outcomes = append(o.outcomes, outcome)
	}
	return Summarize(o.outcomes)
}

// attempt is the mutable state of one branch's integration
type attempt struct {
	index     int
	total     int
	branch    models.Branch
	state     BranchState
	base      models.CommitInfo
	cause     error
	abortErr  error
	conflicts []string
	restored  []string
	upToDate  bool
}

func (o *Orchestrator) integrate(ctx context.Context, index, total int, branch models.Branch) models.MergeOutcome {
	start := time.Now()
	a := &attempt{index: index, total: total, branch: branch, state: StateAttempting}
	log := o.logger.With("branch", branch.Ref())

	o.publish(a, Event{State: StateAttempting})
	for !a.state.IsTerminal() {
		next := o.step(ctx, a)
		if !a.state.CanTransitionTo(next) {
			log.Error("invalid state transition", "from", a.state, "to", next)
			if a.cause == nil {
				a.cause = fmt.Errorf("invalid state transition %s -> %s", a.state, next)
			}
			next = StateAborting
			if a.state == StateAborting {
				next = StateAborted
			}
		}
		log.Debug("state", "from", a.state, "to", next)
		a.state = next
		o.publish(a, Event{State: next, Err: a.cause, Conflicts: a.conflicts})
	}

	outcome := o.outcome(ctx, a)
	outcome.Duration = time.Since(start)

	switch outcome.Status {
	case models.Failed:
		log.Error("merge failed", "err", outcome.Message)
	default:
		log.Info("merged", "status", outcome.Status, "commit", outcome.Commit.Hash)
	}

	o.publish(a, Event{State: a.state, Outcome: &outcome})
	return outcome
}

// step performs the work of the current state and returns the next state
func (o *Orchestrator) step(ctx context.Context, a *attempt) BranchState {
	switch a.state {
	case StateAttempting:
		base, err := o.backend.Head(ctx)
		if err != nil {
			a.cause = fmt.Errorf("read HEAD: %w", err)
			return StateAborting
		}
		a.base = base

		result, err := o.backend.Merge(ctx, a.branch.Ref())
		if err != nil {
			a.cause = err
			return StateAborting
		}
		if result.Conflicted {
			a.conflicts = result.Conflicts
			o.logger.Info("conflict", "branch", a.branch.Ref(),
				"paths", a.conflicts, "protected", o.protectedConflicts(a.conflicts))
			return StateConflicted
		}
		a.upToDate = result.UpToDate
		return StateMerged

	case StateMerged:
		// A clean merge may still have brought in changes to protected paths
		changed, err := changedPaths(ctx, o.backend, a.base.ID, o.opts.Protected.List())
		if err != nil {
			a.cause = err
			return StateAborting
		}
		if len(changed) == 0 {
			return StateSucceeded
		}
		a.restored = changed
		return StateGuarding

	case StateGuarding:
		if err := o.guard(ctx, a); err != nil {
			a.cause = err
			return StateResolutionFailed
		}
		return StateResolved

	case StateConflicted:
		return StateResolving

	case StateResolving:
		req := ResolveRequest{
			Branch:  a.branch,
			Base:    a.base.ID,
			Message: o.opts.CommitMessage(a.branch),
		}
		if err := o.opts.Policy.Resolve(ctx, o.backend, req); err != nil {
			a.cause = err
			return StateResolutionFailed
		}
		return StateResolved

	case StateResolutionFailed:
		return StateAborting

	case StateAborting:
		if err := o.backend.Abort(ctx, a.base.ID); err != nil {
			a.abortErr = err
		}
		return StateAborted
	}

	return StateAborting
}

// guard restores protected paths changed by a clean merge and commits the restoration
func (o *Orchestrator) guard(ctx context.Context, a *attempt) error {
	if err := restoreProtected(ctx, o.backend, a.base.ID, a.restored); err != nil {
		return err
	}
	if err := o.backend.StageAll(ctx); err != nil {
		return fmt.Errorf("stage protected paths: %w", err)
	}
	if err := verifyProtected(ctx, o.backend, a.base.ID, a.restored); err != nil {
		return err
	}
	message := fmt.Sprintf("Restore protected paths after merging %s", a.branch.Ref())
	if err := o.backend.Commit(ctx, message); err != nil {
		return fmt.Errorf("commit protected paths: %w", err)
	}
	return nil
}

func (o *Orchestrator) outcome(ctx context.Context, a *attempt) models.MergeOutcome {
	var outcome models.MergeOutcome

	switch a.state {
	case StateSucceeded:
		outcome = models.NewMergeOutcome(a.branch, models.Succeeded, "")
		if a.upToDate {
			outcome.Message = "already up to date"
		}
	case StateResolved:
		outcome = models.NewMergeOutcome(a.branch, models.SucceededWithResolution, o.resolvedMessage(a))
	default:
		err := a.cause
		if a.abortErr != nil {
			err = errors.Join(err, fmt.Errorf("abort failed: %w", a.abortErr))
		}
		message := "unknown error"
		if err != nil {
			message = err.Error()
		}
		outcome = models.NewMergeOutcome(a.branch, models.Failed, message)
	}
	outcome.Conflicts = a.conflicts

	if head, err := o.backend.Head(ctx); err == nil {
		outcome.Commit = head
	}
	return outcome
}

// protectedConflicts returns the conflicted paths that keep the pre-merge content
func (o *Orchestrator) protectedConflicts(conflicts []string) []string {
	var out []string
	for _, path := range conflicts {
		if o.opts.Protected.Contains(path) {
			out = append(out, path)
		}
	}
	return out
}

func (o *Orchestrator) resolvedMessage(a *attempt) string {
	if len(a.conflicts) > 0 {
		return fmt.Sprintf("resolved %d conflicted path(s) with %s", len(a.conflicts), o.opts.Policy.Name())
	}
	return "restored protected paths: " + strings.Join(a.restored, ", ")
}

func (o *Orchestrator) publish(a *attempt, ev Event) {
	if o.opts.Observer == nil {
		return
	}
	ev.Index = a.index
	ev.Total = a.total
	ev.Branch = a.branch
	o.opts.Observer(ev)
}
