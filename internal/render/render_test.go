package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sadopc/taskview/internal/report"
	"github.com/sadopc/taskview/internal/source"
	"github.com/sadopc/taskview/internal/task"
	"github.com/sadopc/taskview/internal/timew"
)

func plain(s string) string { return ansi.Strip(s) }

func TestTable(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	tbl := report.Table{
		Labels: []string{"ID", "Description"},
		Rows:   [][]string{{"1", "Buy milk"}, {"2", "Write report"}},
		UUIDs:  []uuid.UUID{a, b},
	}
	out := plain(Table(tbl, map[string]bool{b.String(): true}))
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "2 tasks")

	lines := strings.Split(out, "\n")
	assert.Less(t, strings.Index(out, "Buy milk"), strings.Index(out, "Write report"))
	assert.GreaterOrEqual(t, len(lines), 4)
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "No matches.", plain(Table(report.Table{}, nil)))
}

func TestDetail(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	due := now.Add(48 * time.Hour)
	rec := task.Record{
		UUID:        uuid.New(),
		ID:          7,
		Description: "Ship release",
		Status:      task.Pending,
		Project:     "work",
		Tags:        []string{"next"},
		Entry:       now.Add(-24 * time.Hour),
		Due:         &due,
		Attrs:       map[string]task.Value{"priority": task.StringValue("H")},
	}
	f := report.NewFormatter()
	f.Now = func() time.Time { return now }

	out := plain(Detail(rec, f, true))
	assert.Contains(t, out, "Ship release")
	assert.Contains(t, out, rec.UUID.String())
	assert.Contains(t, out, "2024-03-03")
	assert.Contains(t, out, "Priority")
	assert.Contains(t, out, "tracked by timewarrior")
	assert.NotContains(t, out, "Wait")
}

func TestProjects(t *testing.T) {
	out := plain(Projects([]source.Project{{Name: "home", Pending: 3}}))
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "3")
	assert.Contains(t, plain(Projects(nil)), "No projects")
}

func TestTrackingStatus(t *testing.T) {
	out := plain(TrackingStatus(timew.Status{
		Available: true, Enabled: true, HookInstalled: true,
		Active: &timew.Active{Tags: []string{"coding"}, Duration: "PT5M"},
	}))
	assert.Contains(t, out, "✓ timewarrior available")
	assert.Contains(t, out, "coding")
	assert.Contains(t, out, "PT5M")

	out = plain(TrackingStatus(timew.Status{}))
	assert.Contains(t, out, "✗ timewarrior available")
	assert.Contains(t, out, "timewarrior not found")
}

func TestProjectChart(t *testing.T) {
	assert.Equal(t, "No projects with pending tasks.", plain(ProjectChart(nil, 40, 10)))

	out := plain(ProjectChart([]source.Project{{Name: "home", Pending: 1}, {Name: "work", Pending: 3}}, 40, 10))
	assert.NotEmpty(t, strings.TrimSpace(out))
	assert.NotContains(t, out, "No projects")
}
