package models

// CommitInfo contains information about a git commit
type CommitInfo struct {
	// ID is the full commit hash
	ID string
	// Hash is the short commit hash (7 characters)
	Hash string
	// Message is the first line of commit message
	Message string
	// Parents is the number of parent commits (2 for a merge commit)
	Parents int
}

// NewCommitInfo creates a new CommitInfo
func NewCommitInfo(hash, message string) CommitInfo {
	return CommitInfo{
		Hash:    hash,
		Message: message,
	}
}
