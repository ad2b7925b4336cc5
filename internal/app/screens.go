package app

// Screen represents the current view in the application
type Screen int

const (
	ScreenProgress Screen = iota
	ScreenSummary
)
