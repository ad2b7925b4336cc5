package models

// SymbolicHead is the name of a remote's symbolic default-branch pointer (origin/HEAD)
const SymbolicHead = "HEAD"

// Branch is a remote-tracking branch that is a candidate for integration
type Branch struct {
	// Remote is the remote name (e.g., "origin")
	Remote string
	// Name is the branch name on the remote (e.g., "feature/login")
	Name string
}

// NewBranch creates a new Branch
func NewBranch(remote, name string) Branch {
	return Branch{Remote: remote, Name: name}
}

// Ref returns the remote-tracking ref as git prints it (e.g., "origin/feature/login")
func (b Branch) Ref() string {
	if b.Remote == "" {
		return b.Name
	}
	return b.Remote + "/" + b.Name
}

// IsTarget returns true for the remote's symbolic HEAD and for the integration target itself
func (b Branch) IsTarget(target string) bool {
	return b.Name == SymbolicHead || (target != "" && b.Name == target)
}

func (b Branch) String() string {
	return b.Ref()
}
