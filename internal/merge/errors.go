package merge

import (
	"errors"
	"fmt"
)

var (
	// ErrBranchesFailed is returned when at least one branch could not be integrated
	ErrBranchesFailed = errors.New("one or more branches failed to merge")
	// ErrDirtyWorktree is returned when a run would start with uncommitted changes
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes; commit or stash them, or pass --allow-dirty")
)

// TargetNotCheckedOutError reports that merges would not land on the target branch.
// Current is empty when HEAD is detached.
type TargetNotCheckedOutError struct {
	Target  string
	Current string
}

func (e *TargetNotCheckedOutError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("HEAD is detached; check out %s before merging", e.Target)
	}
	return fmt.Sprintf("target branch %s is not checked out (HEAD is on %s); check it out first", e.Target, e.Current)
}
