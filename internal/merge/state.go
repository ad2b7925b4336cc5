package merge

// BranchState is a step of integrating a single branch
type BranchState int

const (
	StateAttempting BranchState = iota
	StateMerged
	StateSucceeded
	StateConflicted
	StateResolving
	StateGuarding
	StateResolved
	StateResolutionFailed
	StateAborting
	StateAborted
)

func (s BranchState) String() string {
	names := []string{
		"Attempting",
		"Merged",
		"Succeeded",
		"Conflicted",
		"Resolving",
		"Guarding",
		"Resolved",
		"ResolutionFailed",
		"Aborting",
		"Aborted",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// transitions lists the states reachable from each state.
// Merged and Guarding cover clean merges that touched a protected path.
var transitions = map[BranchState][]BranchState{
	StateAttempting:       {StateMerged, StateConflicted, StateAborting},
	StateMerged:           {StateSucceeded, StateGuarding, StateAborting},
	StateConflicted:       {StateResolving},
	StateResolving:        {StateResolved, StateResolutionFailed},
	StateGuarding:         {StateResolved, StateResolutionFailed},
	StateResolutionFailed: {StateAborting},
	StateAborting:         {StateAborted},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s BranchState) CanTransitionTo(next BranchState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true for states that end a branch's integration
func (s BranchState) IsTerminal() bool {
	return s == StateSucceeded || s == StateResolved || s == StateAborted
}
