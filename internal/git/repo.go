package git

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wahlandcase/mergeall/internal/models"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const remoteRefPrefix = "refs/remotes/"

// IsGitRepo checks if the path is a git repository
func IsGitRepo(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// FindRepoRoot walks up from path until it finds a git repository
func FindRepoRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	root := abs
	for {
		if IsGitRepo(root) {
			return root, nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", &NotARepositoryError{Path: abs}
		}
		root = parent
	}
}

// GetRepoInfo locates the repository containing path and detects the branch
// merges will land on: the checked-out branch, or the main branch when HEAD is detached
func GetRepoInfo(path string) (*models.RepoInfo, error) {
	root, err := FindRepoRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, err
	}

	info := models.NewRepoInfo(root, filepath.Base(root), "")

	head, err := repo.Head()
	if err == nil && head.Name().IsBranch() {
		info.TargetBranch = head.Name().Short()
		return &info, nil
	}

	mainBranch, err := DetectMainBranch(repo)
	if err != nil {
		return nil, err
	}
	info.TargetBranch = mainBranch
	info.Detached = true
	return &info, nil
}

// DetectMainBranch determines if the repo uses "main" or "master"
func DetectMainBranch(repo *git.Repository) (string, error) {
	// Check remote refs first
	refs, err := repo.References()
	if err != nil {
		return "main", nil
	}

	hasRemoteMain := false
	hasRemoteMaster := false
	hasLocalMain := false
	hasLocalMaster := false

	refs.ForEach(func(ref *plumbing.Reference) error {
		switch ref.Name().String() {
		case "refs/remotes/origin/main":
			hasRemoteMain = true
		case "refs/remotes/origin/master":
			hasRemoteMaster = true
		case "refs/heads/main":
			hasLocalMain = true
		case "refs/heads/master":
			hasLocalMaster = true
		}
		return nil
	})

	switch {
	case hasRemoteMain:
		return "main", nil
	case hasRemoteMaster:
		return "master", nil
	case hasLocalMain:
		return "main", nil
	case hasLocalMaster:
		return "master", nil
	}

	return "main", nil
}

// ListRemoteBranches lists every remote-tracking branch, including symbolic
// pointers such as origin/HEAD, in refname order (the order `git branch -r` prints).
// When remote is non-empty only that remote's branches are returned.
func ListRemoteBranches(repoPath, remote string) ([]models.Branch, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, &NotARepositoryError{Path: repoPath}
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}
	var remoteNames []string
	for _, r := range remotes {
		remoteNames = append(remoteNames, r.Config().Name)
	}
	// Longest first so "upstream/mirror" wins over "upstream"
	sort.Slice(remoteNames, func(i, j int) bool {
		return len(remoteNames[i]) > len(remoteNames[j])
	})

	refs, err := repo.References()
	if err != nil {
		return nil, err
	}

	var refNames []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsRemote() {
			refNames = append(refNames, ref.Name().String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(refNames)

	var branches []models.Branch
	for _, refName := range refNames {
		branch := splitRemoteRef(strings.TrimPrefix(refName, remoteRefPrefix), remoteNames)
		if remote != "" && branch.Remote != remote {
			continue
		}
		branches = append(branches, branch)
	}

	return branches, nil
}

// splitRemoteRef splits "origin/feature/a" into remote and branch name
func splitRemoteRef(short string, remoteNames []string) models.Branch {
	for _, name := range remoteNames {
		if strings.HasPrefix(short, name+"/") {
			return models.NewBranch(name, strings.TrimPrefix(short, name+"/"))
		}
	}
	// Stale refs of a removed remote
	if i := strings.Index(short, "/"); i > 0 {
		return models.NewBranch(short[:i], short[i+1:])
	}
	return models.NewBranch("", short)
}

// ReadWorktreeFile returns the content of path in the working tree, and whether it exists there
func ReadWorktreeFile(repoPath, path string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
