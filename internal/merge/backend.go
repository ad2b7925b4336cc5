// Package merge integrates remote branches into the current branch one at a
// time. It owns the per-branch state machine, the conflict policy and the
// outcome bookkeeping; all repository access goes through Backend.
package merge

import (
	"context"

	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/models"
)

// Backend is the version-control surface the orchestrator and the conflict
// policy drive. *git.CLI implements it against a real working tree.
type Backend interface {
	// Head returns the commit the current branch points at
	Head(ctx context.Context) (models.CommitInfo, error)
	// Merge merges ref into the current branch, committing on success
	Merge(ctx context.Context, ref string) (git.MergeAttempt, error)
	// CheckoutTheirs takes the incoming version of every path of an in-progress merge
	CheckoutTheirs(ctx context.Context) error
	// RestorePath sets path to its content at rev (removing it if absent there)
	RestorePath(ctx context.Context, rev, path string) error
	// PathChanged reports whether path in the index or working tree differs from rev
	PathChanged(ctx context.Context, rev, path string) (bool, error)
	// StageAll stages every working tree change
	StageAll(ctx context.Context) error
	// Commit records the index with the given message
	Commit(ctx context.Context, message string) error
	// Abort discards any in-progress merge and returns the branch to rev
	Abort(ctx context.Context, rev string) error
}

var _ Backend = (*git.CLI)(nil)
