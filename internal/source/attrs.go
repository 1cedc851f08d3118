package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/taskview/internal/task"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", task.TimeLayout}

var readOnlyAttrs = map[string]bool{
	"uuid": true, "id": true, "status": true, "entry": true, "end": true,
	"urgency": true, "modified": true, "depends": true,
}

// applyAttrs edits rec with modification words in Taskwarrior's command-line
// form: key:value, +tag, -tag. A bare word is treated as a tag.
func applyAttrs(rec *task.Record, attrs []string) error {
	for _, a := range attrs {
		a = strings.TrimSpace(a)
		switch {
		case a == "":
			continue
		case strings.HasPrefix(a, "+") && len(a) > 1:
			addTag(rec, a[1:])
			continue
		case strings.HasPrefix(a, "-") && len(a) > 1:
			removeTag(rec, a[1:])
			continue
		}

		key, value, ok := strings.Cut(a, ":")
		if !ok || key == "" {
			addTag(rec, a)
			continue
		}
		if err := setAttr(rec, key, value); err != nil {
			return err
		}
	}
	return nil
}

func setAttr(rec *task.Record, key, value string) error {
	if readOnlyAttrs[key] {
		return fmt.Errorf("attribute %q is read-only", key)
	}
	switch key {
	case "description":
		if value == "" {
			return fmt.Errorf("description cannot be empty")
		}
		rec.Description = value
	case "project":
		rec.Project = value
	case "due", "scheduled", "wait", "until", "start":
		t, err := parseDate(value)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", key, err)
		}
		setDate(rec, key, t)
	default:
		if value == "" {
			delete(rec.Attrs, key)
			return nil
		}
		if rec.Attrs == nil {
			rec.Attrs = make(map[string]task.Value)
		}
		rec.Attrs[key] = task.StringValue(value)
	}
	return nil
}

// parseDate returns nil for an empty value, which clears the field.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		loc := time.Local
		if layout == task.TimeLayout {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			t = t.Local()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", v)
}

func setDate(rec *task.Record, field string, t *time.Time) {
	switch field {
	case "due":
		rec.Due = t
	case "scheduled":
		rec.Scheduled = t
	case "wait":
		rec.Wait = t
	case "until":
		rec.Until = t
	case "start":
		rec.Start = t
	}
}

func addTag(rec *task.Record, tag string) {
	if !rec.HasTag(tag) {
		rec.Tags = append(rec.Tags, tag)
	}
}

func removeTag(rec *task.Record, tag string) {
	kept := rec.Tags[:0]
	for _, t := range rec.Tags {
		if !strings.EqualFold(t, tag) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	rec.Tags = kept
}
