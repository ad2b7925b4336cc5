package models

// RunSummary counts the outcomes of one run
type RunSummary struct {
	// Succeeded counts Succeeded and SucceededWithResolution outcomes
	Succeeded int
	// Resolved counts the SucceededWithResolution subset of Succeeded
	Resolved int
	// Failed counts Failed outcomes
	Failed int
}

// Total returns the number of branches processed
func (s RunSummary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures returns true if any branch failed
func (s RunSummary) HasFailures() bool {
	return s.Failed > 0
}
