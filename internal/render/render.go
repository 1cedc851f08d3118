// Package render draws reports and task details for the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/taskview/internal/report"
	"github.com/sadopc/taskview/internal/source"
	"github.com/sadopc/taskview/internal/task"
	"github.com/sadopc/taskview/internal/timew"
)

// Table draws tbl with a header rule. Rows whose task is in tracked are
// highlighted.
func Table(tbl report.Table, tracked map[string]bool) string {
	if len(tbl.Rows) == 0 {
		return mutedStyle.Render("No matches.")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers(tbl.Labels...).
		Rows(tbl.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row < len(tbl.UUIDs) && tracked[tbl.UUIDs[row].String()]:
				return trackedCellStyle
			case row%2 == 1:
				return altCellStyle
			}
			return cellStyle
		})

	noun := "tasks"
	if len(tbl.Rows) == 1 {
		noun = "task"
	}
	return t.String() + "\n" + mutedStyle.Render(fmt.Sprintf("%d %s", len(tbl.Rows), noun))
}

// Detail lists every set field of rec, one per line.
func Detail(rec task.Record, f *report.Formatter, tracked bool) string {
	var b strings.Builder
	line := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteString(keyStyle.Render(key) + value + "\n")
	}

	b.WriteString(titleStyle.Render(rec.Description) + "\n\n")
	line("UUID", rec.UUID.String())
	if rec.ID > 0 {
		line("ID", fmt.Sprint(rec.ID))
	}
	line("Status", rec.Status.String())
	line("Project", rec.Project)
	line("Tags", f.Attribute("tags", rec, nil))
	for _, field := range []string{"entry", "start", "end", "due", "scheduled", "wait", "until"} {
		if rec.Date(field) == nil {
			continue
		}
		line(report.DeriveLabel(field), f.Attribute(field, rec, nil)+" "+mutedStyle.Render("("+f.Attribute(field+".relative", rec, nil)+")"))
	}
	if len(rec.Depends) > 0 {
		ids := make([]string, 0, len(rec.Depends))
		for _, d := range rec.Depends {
			ids = append(ids, d.String())
		}
		line("Depends", strings.Join(ids, ", "))
	}
	line("Urgency", f.Attribute("urgency", rec, nil))
	if rec.Annotations > 0 {
		line("Annotations", fmt.Sprint(rec.Annotations))
	}

	keys := make([]string, 0, len(rec.Attrs))
	for k := range rec.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line(report.DeriveLabel(k), f.Attribute(k, rec, nil))
	}

	if tracked {
		b.WriteString("\n" + successStyle.Render("● tracked by timewarrior") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func Projects(projects []source.Project) string {
	if len(projects) == 0 {
		return mutedStyle.Render("No projects with pending tasks.")
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.Name, fmt.Sprint(p.Pending)})
	}
	return Table(report.Table{Labels: []string{"Project", "Pending"}, Rows: rows}, nil)
}

func TrackingStatus(st timew.Status) string {
	var b strings.Builder
	check := func(ok bool, label string) {
		mark := errorStyle.Render("✗")
		if ok {
			mark = successStyle.Render("✓")
		}
		b.WriteString(mark + " " + label + "\n")
	}
	check(st.Available, "timewarrior available")
	check(st.HookInstalled, "on-modify hook installed")
	check(st.Enabled, "integration enabled")

	if st.Active != nil {
		b.WriteString("\n" + titleStyle.Render("Tracking") + "\n")
		b.WriteString(keyStyle.Render("Tags") + strings.Join(st.Active.Tags, " ") + "\n")
		b.WriteString(keyStyle.Render("Duration") + st.Active.Duration + "\n")
	} else if st.Available {
		b.WriteString("\n" + mutedStyle.Render("Nothing is being tracked.") + "\n")
	}

	if hints := st.Instructions(); len(hints) > 0 {
		b.WriteString("\n")
		for _, h := range hints {
			b.WriteString(warningStyle.Render("• "+h) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func Success(msg string) string { return successStyle.Render(msg) }

func Warning(msg string) string { return warningStyle.Render(msg) }

func Error(msg string) string { return errorStyle.Render(msg) }
