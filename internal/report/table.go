package report

import (
	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/task"
)

// Table is a rendered report: one row of display strings per task.
type Table struct {
	Labels []string
	Rows   [][]string
	// UUIDs[i] identifies the task shown in Rows[i].
	UUIDs []uuid.UUID
}

// Build formats every record against the report columns.
func (f *Formatter) Build(spec Spec, records []task.Record) Table {
	t := Table{Labels: append([]string(nil), spec.Labels...)}
	if len(spec.Columns) == 0 {
		return t
	}
	for _, r := range records {
		row := make([]string, 0, len(spec.Columns))
		for _, c := range spec.Columns {
			row = append(row, f.Attribute(c, r, records))
		}
		t.Rows = append(t.Rows, row)
		t.UUIDs = append(t.UUIDs, r.UUID)
	}
	return t
}

// Simplify drops every column that is empty in all rows, together with its
// label. An empty table has no columns.
func (t Table) Simplify() Table {
	if len(t.Rows) == 0 {
		return Table{}
	}

	width := make([]int, len(t.Rows[0]))
	for _, row := range t.Rows {
		for i, s := range row {
			width[i] += len(s)
		}
	}

	out := Table{UUIDs: t.UUIDs}
	for i, l := range t.Labels {
		if i < len(width) && width[i] != 0 {
			out.Labels = append(out.Labels, l)
		}
	}
	for _, row := range t.Rows {
		kept := make([]string, 0, len(row))
		for i, s := range row {
			if width[i] != 0 {
				kept = append(kept, s)
			}
		}
		out.Rows = append(out.Rows, kept)
	}
	return out
}

// Render builds the table and drops its empty columns.
func (f *Formatter) Render(spec Spec, records []task.Record) Table {
	return f.Build(spec, records).Simplify()
}
