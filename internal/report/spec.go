package report

import (
	"errors"
	"fmt"
	"strings"
)

// Spec is the resolved column layout of one named report.
type Spec struct {
	Name    string
	Columns []string
	Labels  []string
}

// MismatchError reports a report whose column and label lists differ in length.
type MismatchError struct {
	Report  string
	Columns int
	Labels  int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"report %q: must have the same number of labels (%d) and columns (%d); compare report.%s.columns and report.%s.labels",
		e.Report, e.Labels, e.Columns, e.Report, e.Report,
	)
}

// ErrUnknownReport is returned by Definitions that do not know a report.
var ErrUnknownReport = errors.New("unknown report")

// Resolve builds a Spec. Missing labels are derived from the column names.
func Resolve(name string, columns, labels []string) (Spec, error) {
	if len(labels) == 0 {
		labels = make([]string, 0, len(columns))
		for _, c := range columns {
			if l := DeriveLabel(c); l != "" {
				labels = append(labels, l)
			}
		}
	}
	if len(labels) != len(columns) {
		return Spec{}, &MismatchError{Report: name, Columns: len(columns), Labels: len(labels)}
	}
	return Spec{Name: name, Columns: columns, Labels: labels}, nil
}

// DeriveLabel turns "due.relative" into "Due" and "id" into "ID".
func DeriveLabel(column string) string {
	base, _, _ := strings.Cut(column, ".")
	if base == "id" {
		return "ID"
	}
	if base == "" {
		return ""
	}
	r := []rune(base)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// Definitions looks up the configured columns and labels of a report.
// Labels may be empty. Unknown reports yield ErrUnknownReport.
type Definitions interface {
	ReportDefinition(name string) (columns, labels []string, err error)
}

// Static is a fixed set of report definitions.
type Static map[string]Definition

type Definition struct {
	Columns []string
	Labels  []string
	Filter  string
}

func (s Static) ReportDefinition(name string) ([]string, []string, error) {
	d, ok := s[name]
	if !ok || len(d.Columns) == 0 {
		return nil, nil, fmt.Errorf("report %q: %w", name, ErrUnknownReport)
	}
	return d.Columns, d.Labels, nil
}

// Builtin mirrors the stock Taskwarrior reports used when nothing else
// defines them.
var Builtin = Static{
	"next": {
		Columns: []string{"id", "start.age", "entry.age", "depends", "priority", "project", "tags", "recur", "scheduled.countdown", "due.relative", "until.remaining", "description.count", "urgency"},
		Filter:  "status:pending -WAITING limit:page",
	},
	"list": {
		Columns: []string{"id", "start.age", "entry.age", "depends.count", "priority", "project", "tags", "recur", "scheduled.countdown", "due", "until.remaining", "description.count", "urgency"},
		Filter:  "status:pending -WAITING",
	},
	"all": {
		Columns: []string{"id", "status.short", "entry.age", "end.age", "depends.count", "priority", "project", "tags", "recur", "wait.remaining", "scheduled", "due", "until", "description"},
	},
	"completed": {
		Columns: []string{"id", "entry", "end", "entry.age", "depends", "priority", "project", "tags", "recur", "due", "description.count"},
		Labels:  []string{"ID", "Created", "Completed", "Age", "Deps", "P", "Project", "Tags", "R", "Due", "Description"},
		Filter:  "status:completed",
	},
}

// Resolver consults each Definitions in order and resolves the first match.
type Resolver []Definitions

func (r Resolver) Resolve(name string) (Spec, error) {
	for _, d := range r {
		if d == nil {
			continue
		}
		cols, labels, err := d.ReportDefinition(name)
		if errors.Is(err, ErrUnknownReport) {
			continue
		}
		if err != nil {
			return Spec{}, fmt.Errorf("load report %q: %w", name, err)
		}
		return Resolve(name, cols, labels)
	}
	return Spec{}, fmt.Errorf("report %q: %w", name, ErrUnknownReport)
}
