package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/report"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() Snapshot {
	tracked := uuid.New()
	return Snapshot{
		Report: "next",
		Table: report.Table{
			Labels: []string{"ID", "Description"},
			Rows:   [][]string{{"1", "Buy milk"}, {"2", "Write report"}},
			UUIDs:  []uuid.UUID{uuid.New(), tracked},
		},
		Tracked: map[string]bool{tracked.String(): true},
	}
}

func newTestApp(t *testing.T, load Loader) App {
	t.Helper()
	a := NewApp(load, time.Second, t.TempDir())
	a.now = func() time.Time { return fixedNow }
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.(App)
}

// step feeds msg to a and runs the returned command once, feeding its result
// back in. Batches and ticks are not followed.
func step(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, cmd := a.Update(msg)
	a = m.(App)
	if cmd == nil {
		return a
	}
	next := cmd()
	switch next.(type) {
	case tea.BatchMsg, tickMsg, nil:
		return a
	}
	m, _ = a.Update(next)
	return m.(App)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Loading
// ============================================================

func TestViewLoading(t *testing.T) {
	a := NewApp(func() (Snapshot, error) { return Snapshot{}, nil }, 0, "")
	if got := a.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}
	a = newTestApp(t, func() (Snapshot, error) { return Snapshot{}, nil })
	if got := a.View(); got != "Loading..." {
		t.Fatalf("View before first load = %q", got)
	}
}

func TestLoadedSnapshotRendered(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	a = step(t, a, changedMsg{})

	if !a.loaded {
		t.Fatal("changedMsg should trigger a load")
	}
	view := a.View()
	for _, want := range []string{"taskview", "next", "Buy milk", "Write report", "1 tracked", "updated 12:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLoadErrorKeepsLastSnapshot(t *testing.T) {
	fail := false
	a := newTestApp(t, func() (Snapshot, error) {
		if fail {
			return Snapshot{}, errors.New("task exited with code 2")
		}
		return sampleSnapshot(), nil
	})
	a = step(t, a, changedMsg{})

	fail = true
	a = step(t, a, keyMsg("r"))
	if a.loadErr == nil {
		t.Fatal("expected load error")
	}
	if a.snap.Report != "next" {
		t.Fatal("failed load should keep the previous snapshot")
	}
	if !strings.Contains(a.View(), "task exited with code 2") {
		t.Fatal("error should be shown")
	}

	fail = false
	a = step(t, a, keyMsg("r"))
	if a.loadErr != nil || strings.Contains(a.View(), "error:") {
		t.Fatal("successful reload should clear the error")
	}
}

func TestTickReschedules(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	if a.tickCmd() == nil {
		t.Fatal("tick should be scheduled when an interval is set")
	}
	_, cmd := a.Update(tickMsg(fixedNow))
	if cmd == nil {
		t.Fatal("tick should reload and reschedule")
	}

	a.interval = 0
	if a.tickCmd() != nil {
		t.Fatal("no interval means no tick")
	}
}

// ============================================================
// Keys
// ============================================================

func TestQuit(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	a = step(t, a, keyMsg("?"))
	if !a.showHelp || !a.help.ShowAll {
		t.Fatal("? should show full help")
	}
	a = step(t, a, keyMsg("?"))
	if a.showHelp {
		t.Fatal("? should hide full help")
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPicker(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	a = step(t, a, changedMsg{})

	a = step(t, a, keyMsg("e"))
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if !strings.Contains(a.View(), "Export Format") {
		t.Fatal("picker should be visible")
	}
	a = step(t, a, keyMsg("esc"))
	if a.exportPicking {
		t.Fatal("esc should close the picker")
	}

	a = step(t, a, keyMsg("e"))
	a = step(t, a, keyMsg("enter"))
	csvPath := filepath.Join(a.exportDir, "taskview-next-2024-06-15.csv")
	if a.status != "Exported to "+csvPath {
		t.Fatalf("status = %q", a.status)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Buy milk") {
		t.Fatal("csv should contain the visible rows")
	}

	a = step(t, a, keyMsg("e"))
	a = step(t, a, keyMsg("down"))
	a = step(t, a, keyMsg("enter"))
	if _, err := os.Stat(filepath.Join(a.exportDir, "taskview-next-2024-06-15.json")); err != nil {
		t.Fatal("json export missing:", err)
	}
}

func TestExportErrorShown(t *testing.T) {
	a := newTestApp(t, func() (Snapshot, error) { return sampleSnapshot(), nil })
	a.exportDir = filepath.Join(a.exportDir, "missing", "dir")
	a = step(t, a, changedMsg{})
	a = step(t, a, keyMsg("e"))
	a = step(t, a, keyMsg("enter"))
	if !a.isError || !strings.HasPrefix(a.status, "CSV error") {
		t.Fatalf("status = %q, isError = %v", a.status, a.isError)
	}
}
