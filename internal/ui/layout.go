package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the added-date column.
	LayoutWideWidth = 120
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read for the Logs view.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// historyLimit is the number of history entries shown in the dialog.
	historyLimit = 8
)
