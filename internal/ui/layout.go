package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panels stack.
	LayoutCompactWidth = 100

	// LayoutSessionWidth is the minimum width to show the session id.
	LayoutSessionWidth = 120
)

// Log overlay limits.
const (
	// LogFetchLimit is the number of log entries read per refresh.
	LogFetchLimit = 400

	// LogRefreshInterval is how often the open log overlay re-reads the file.
	LogRefreshInterval = 2 * time.Second
)

// Timing constants.
const (
	// PrefsSaveDebounce coalesces rapid theme or language changes into one
	// write of the preferences file.
	PrefsSaveDebounce = 500 * time.Millisecond

	// FlashDuration is how long footer messages stay visible.
	FlashDuration = 4 * time.Second
)
