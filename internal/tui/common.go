package tui

import (
	"time"

	"github.com/sadopc/taskview/internal/report"
)

// Snapshot is one rendering of the watched report.
type Snapshot struct {
	Report  string
	Table   report.Table
	Tracked map[string]bool
}

// Loader produces a fresh Snapshot. It is called off the UI goroutine.
type Loader func() (Snapshot, error)

// --- Messages ---

type loadedMsg struct {
	snap Snapshot
	err  error
	at   time.Time
}

// changedMsg tells the view that the task data changed on disk.
type changedMsg struct{}

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

var exportFormats = []string{"CSV", "JSON"}
