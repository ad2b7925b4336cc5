package merge

import (
	"context"
	"fmt"
	"regexp"

	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/models"
)

// Source enumerates the remote branches a run integrates
type Source struct {
	RepoPath string
	// Target is the branch merges land on; its remote-tracking branches are skipped
	Target string
	// Remote restricts the listing to one remote when non-empty
	Remote  string
	Exclude []*regexp.Regexp

	list func(repoPath, remote string) ([]models.Branch, error)
}

// NewSource creates a Source reading remote-tracking refs from the repository
func NewSource(repoPath, target, remote string, exclude []*regexp.Regexp) *Source {
	return &Source{
		RepoPath: repoPath,
		Target:   target,
		Remote:   remote,
		Exclude:  exclude,
		list:     git.ListRemoteBranches,
	}
}

// ListIntegrationCandidates returns every remote branch except symbolic HEAD
// pointers, the target's own branches and configured exclusions, in listing order
func (s *Source) ListIntegrationCandidates(ctx context.Context) ([]models.Branch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := s.list(s.RepoPath, s.Remote)
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}

	candidates := make([]models.Branch, 0, len(all))
	for _, branch := range all {
		if branch.IsTarget(s.Target) || s.excluded(branch) {
			continue
		}
		candidates = append(candidates, branch)
	}
	return candidates, nil
}

func (s *Source) excluded(branch models.Branch) bool {
	for _, re := range s.Exclude {
		if re.MatchString(branch.Name) {
			return true
		}
	}
	return false
}
