package merge

import (
	"context"
	"fmt"

	"github.com/wahlandcase/mergeall/internal/models"
)

// ResolveRequest describes a conflicted merge waiting for resolution
type ResolveRequest struct {
	Branch models.Branch
	// Base is the current branch's commit before the merge began
	Base string
	// Message is the commit message for the resolution commit
	Message string
}

// ConflictPolicy decides, per file, whose version a conflicted merge keeps and
// commits the result. It must return any failure to the caller and never
// abort the merge itself.
type ConflictPolicy interface {
	Name() string
	Resolve(ctx context.Context, b Backend, req ResolveRequest) error
}

// TheirsExceptProtected takes the incoming branch's version of every file,
// then puts the protected paths back to their pre-merge content.
type TheirsExceptProtected struct {
	Protected models.ProtectedPaths
}

func (TheirsExceptProtected) Name() string {
	return "theirs-except-protected"
}

func (p TheirsExceptProtected) Resolve(ctx context.Context, b Backend, req ResolveRequest) error {
	if err := b.CheckoutTheirs(ctx); err != nil {
		return fmt.Errorf("take incoming versions: %w", err)
	}
	if err := restoreProtected(ctx, b, req.Base, p.Protected.List()); err != nil {
		return err
	}
	if err := b.StageAll(ctx); err != nil {
		return fmt.Errorf("stage resolution: %w", err)
	}
	if err := verifyProtected(ctx, b, req.Base, p.Protected.List()); err != nil {
		return err
	}
	if err := b.Commit(ctx, req.Message); err != nil {
		return fmt.Errorf("commit resolution: %w", err)
	}
	return nil
}

func restoreProtected(ctx context.Context, b Backend, base string, paths []string) error {
	for _, path := range paths {
		if err := b.RestorePath(ctx, base, path); err != nil {
			return fmt.Errorf("restore protected path %s: %w", path, err)
		}
	}
	return nil
}

// verifyProtected fails if any protected path no longer matches base
func verifyProtected(ctx context.Context, b Backend, base string, paths []string) error {
	changed, err := changedPaths(ctx, b, base, paths)
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		return &ProtectedPathError{Paths: changed}
	}
	return nil
}

func changedPaths(ctx context.Context, b Backend, base string, paths []string) ([]string, error) {
	var changed []string
	for _, path := range paths {
		diff, err := b.PathChanged(ctx, base, path)
		if err != nil {
			return nil, fmt.Errorf("compare protected path %s: %w", path, err)
		}
		if diff {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

// ProtectedPathError reports protected paths that differ from their pre-merge content
type ProtectedPathError struct {
	Paths []string
}

func (e *ProtectedPathError) Error() string {
	return fmt.Sprintf("protected paths differ from pre-merge content: %v", e.Paths)
}
