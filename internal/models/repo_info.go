package models

// RepoInfo contains information about the git repository being integrated
type RepoInfo struct {
	// Path to the repository root
	Path string
	// DisplayName (directory name of the repository root)
	DisplayName string
	// TargetBranch is the branch merges land on (the current branch unless configured)
	TargetBranch string
	// Detached is true when HEAD did not point at a branch and TargetBranch was guessed
	Detached bool
}

// NewRepoInfo creates a new RepoInfo
func NewRepoInfo(path, displayName, targetBranch string) RepoInfo {
	return RepoInfo{
		Path:         path,
		DisplayName:  displayName,
		TargetBranch: targetBranch,
	}
}

// WithTarget overrides the target branch and returns the RepoInfo
func (r RepoInfo) WithTarget(target string) RepoInfo {
	if target != "" {
		r.TargetBranch = target
		r.Detached = false
	}
	return r
}
