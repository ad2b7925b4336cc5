package models

import "time"

// MergeStatus represents the final status of integrating a single branch
type MergeStatus int

const (
	Succeeded               MergeStatus = iota // Merged without conflicts
	SucceededWithResolution                    // Conflicts resolved by the conflict policy and committed
	Failed                                     // Merge or resolution failed; the attempt was aborted
)

func (s MergeStatus) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case SucceededWithResolution:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSuccess returns true if the branch ended up merged
func (s MergeStatus) IsSuccess() bool {
	return s == Succeeded || s == SucceededWithResolution
}

// MergeOutcome represents the result of integrating a single branch
type MergeOutcome struct {
	// Branch that was processed
	Branch Branch
	// Status of the integration
	Status MergeStatus
	// Message is a diagnostic (the causing error for Failed)
	Message string
	// Conflicts lists the paths git reported as unmerged, if any
	Conflicts []string
	// Commit is HEAD after the branch was processed
	Commit CommitInfo
	// Duration of the attempt
	Duration time.Duration
}

// NewMergeOutcome creates a new MergeOutcome
func NewMergeOutcome(branch Branch, status MergeStatus, message string) MergeOutcome {
	return MergeOutcome{
		Branch:  branch,
		Status:  status,
		Message: message,
	}
}
