package git

import (
	"strings"

	"github.com/wahlandcase/mergeall/internal/models"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ReadHeadCommit returns the commit HEAD points at
func ReadHeadCommit(repoPath string) (models.CommitInfo, error) {
	return ReadCommit(repoPath, "HEAD")
}

// ReadCommit resolves a revision and returns its commit info
func ReadCommit(repoPath, rev string) (models.CommitInfo, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return models.CommitInfo{}, err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return models.CommitInfo{}, err
	}

	c, err := repo.CommitObject(*hash)
	if err != nil {
		return models.CommitInfo{}, err
	}

	message := strings.Split(c.Message, "\n")[0] // First line for display
	info := models.NewCommitInfo(c.Hash.String()[:7], message)
	info.ID = c.Hash.String()
	info.Parents = c.NumParents()
	return info, nil
}
