package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/task"
)

const (
	DefaultDescriptionWidth = 100
	ellipsis                = "…"
)

// VirtualTags are derived-state tags computed by Taskwarrior. They never
// appear in tag listings.
var VirtualTags = map[string]bool{
	"PROJECT": true, "BLOCKED": true, "UNBLOCKED": true, "BLOCKING": true,
	"DUE": true, "DUETODAY": true, "TODAY": true, "OVERDUE": true, "WEEK": true,
	"MONTH": true, "QUARTER": true, "YEAR": true, "ACTIVE": true, "SCHEDULED": true,
	"PARENT": true, "CHILD": true, "UNTIL": true, "WAITING": true, "ANNOTATED": true,
	"READY": true, "YESTERDAY": true, "TOMORROW": true, "TAGGED": true, "PENDING": true,
	"COMPLETED": true, "DELETED": true, "UDA": true, "ORPHAN": true, "PRIORITY": true,
	"LATEST": true, "RECURRING": true, "INSTANCE": true, "TEMPLATE": true,
}

var historicalDates = map[string]bool{"entry": true, "start": true, "end": true}
var futureDates = map[string]bool{"due": true, "scheduled": true, "until": true, "wait": true}

// Formatter derives the display string of each report column.
type Formatter struct {
	DescriptionWidth      int
	VaguePrecise          bool
	DurationHumanReadable bool
	Now                   func() time.Time
}

func NewFormatter() *Formatter {
	return &Formatter{
		DescriptionWidth:      DefaultDescriptionWidth,
		DurationHumanReadable: true,
		Now:                   time.Now,
	}
}

func (f *Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// Attribute renders column name for r. all is the current result set, used
// to resolve dependencies to working-set ids.
func (f *Formatter) Attribute(name string, r task.Record, all []task.Record) string {
	base, suffix, _ := strings.Cut(name, ".")

	if historicalDates[base] || futureDates[base] {
		return f.date(base, suffix, r)
	}

	switch name {
	case "id":
		if r.ID == 0 {
			return ""
		}
		return strconv.Itoa(r.ID)
	case "status":
		return r.Status.String()
	case "status.short":
		return r.Status.String()[:1]
	case "project":
		return r.Project
	case "tags":
		return strings.Join(userTags(r.Tags), ",")
	case "tags.count":
		if n := len(userTags(r.Tags)); n > 0 {
			return strconv.Itoa(n)
		}
		return ""
	case "depends":
		return dependsIDs(r, all)
	case "depends.count":
		if len(r.Depends) == 0 {
			return ""
		}
		return strconv.Itoa(len(r.Depends))
	case "description", "description.desc":
		return r.Description
	case "description.count":
		return r.Description + annotationSuffix(r.Annotations)
	case "description.truncated":
		return Truncate(r.Description, f.DescriptionWidth)
	case "description.truncated_count":
		suffix := annotationSuffix(r.Annotations)
		sw := ansi.StringWidth(suffix)
		if sw > f.DescriptionWidth {
			// No room for the suffix: cut the whole cell to the budget.
			return Truncate(r.Description+suffix, f.DescriptionWidth)
		}
		return Truncate(r.Description, f.DescriptionWidth-sw) + suffix
	case "urgency":
		return fmt.Sprintf("%.2f", r.Urgency)
	}

	v, ok := r.Attrs[name]
	if !ok {
		return ""
	}
	return f.attr(name, v)
}

func (f *Formatter) date(field, suffix string, r task.Record) string {
	t := r.Date(field)
	if t == nil {
		return ""
	}
	switch suffix {
	case "relative", "age", "countdown", "remaining":
		if historicalDates[field] {
			return vagueBetween(*t, f.now(), f.VaguePrecise)
		}
		return vagueBetween(f.now(), *t, f.VaguePrecise)
	}
	return formatDate(*t)
}

func (f *Formatter) attr(name string, v task.Value) string {
	if !f.DurationHumanReadable || !IsDurationField(name) {
		return v.String()
	}
	switch v.Kind {
	case task.KindInt:
		return FormatDuration(v.Int, f.VaguePrecise)
	case task.KindFloat:
		return FormatDuration(int64(v.Float), f.VaguePrecise)
	}
	if n, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
		return FormatDuration(n, f.VaguePrecise)
	}
	if x, err := strconv.ParseFloat(v.Str, 64); err == nil {
		return FormatDuration(int64(x), f.VaguePrecise)
	}
	return v.Str
}

// IsDurationField reports whether a user attribute holds a second count.
func IsDurationField(name string) bool {
	return strings.Contains(name, "time") ||
		strings.Contains(name, "duration") ||
		strings.HasSuffix(name, "elapsed")
}

// Truncate cuts s to at most width terminal cells, marking the cut with an
// ellipsis. Strings that already fit are returned unchanged.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}

func annotationSuffix(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" [%d]", n)
}

func userTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !VirtualTags[t] {
			out = append(out, t)
		}
	}
	return out
}

func dependsIDs(r task.Record, all []task.Record) string {
	if len(r.Depends) == 0 {
		return ""
	}
	ids := make(map[uuid.UUID]int, len(all))
	for _, t := range all {
		ids[t.UUID] = t.ID
	}
	var out []string
	for _, d := range r.Depends {
		if id, ok := ids[d]; ok && id != 0 {
			out = append(out, strconv.Itoa(id))
		}
	}
	return strings.Join(out, " ")
}
