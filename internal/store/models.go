package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/task"
)

// TaskRow is a task exactly as stored. Record converts it.
type TaskRow struct {
	UUID        string
	Status      string
	Description string
	Project     string
	Tags        string // JSON array
	Depends     string // JSON array of uuids
	Attrs       string // JSON object of attrValue
	Urgency     float64
	Annotations int
	EntryAt     string
	StartAt     sql.NullString
	EndAt       sql.NullString
	DueAt       sql.NullString
	UntilAt     sql.NullString
	WaitAt      sql.NullString
	ScheduledAt sql.NullString
	ModifiedAt  string
}

type attrValue struct {
	Type  string  `json:"t"`
	Str   string  `json:"s,omitempty"`
	Int   int64   `json:"i,omitempty"`
	Float float64 `json:"f,omitempty"`
}

// ProjectSummary counts the pending tasks of one project.
type ProjectSummary struct {
	Name    string
	Pending int
}

// Setting is one key of the settings table.
type Setting struct {
	Key   string
	Value string
}

// Deleted reports whether the row holds a deleted task.
func (r TaskRow) Deleted() bool {
	return strings.EqualFold(r.Status, "deleted")
}

// Record converts the row. Rows whose stored values cannot be decoded
// return an error.
func (r TaskRow) Record() (task.Record, error) {
	var rec task.Record
	var err error

	if rec.UUID, err = uuid.Parse(r.UUID); err != nil {
		return rec, fmt.Errorf("parse uuid %q: %w", r.UUID, err)
	}
	if rec.Status, err = task.ParseStatus(r.Status); err != nil {
		return rec, err
	}
	rec.Description = r.Description
	rec.Project = r.Project
	rec.Urgency = r.Urgency
	rec.Annotations = r.Annotations

	if err := json.Unmarshal([]byte(r.Tags), &rec.Tags); err != nil {
		return rec, fmt.Errorf("decode tags: %w", err)
	}
	if len(rec.Tags) == 0 {
		rec.Tags = nil
	}

	var deps []string
	if err := json.Unmarshal([]byte(r.Depends), &deps); err != nil {
		return rec, fmt.Errorf("decode depends: %w", err)
	}
	for _, d := range deps {
		id, err := uuid.Parse(d)
		if err != nil {
			return rec, fmt.Errorf("parse dependency %q: %w", d, err)
		}
		rec.Depends = append(rec.Depends, id)
	}

	var attrs map[string]attrValue
	if err := json.Unmarshal([]byte(r.Attrs), &attrs); err != nil {
		return rec, fmt.Errorf("decode attrs: %w", err)
	}
	for k, a := range attrs {
		v, err := a.value()
		if err != nil {
			return rec, fmt.Errorf("attribute %s: %w", k, err)
		}
		if rec.Attrs == nil {
			rec.Attrs = make(map[string]task.Value, len(attrs))
		}
		rec.Attrs[k] = v
	}

	entry, err := parseTime(r.EntryAt)
	if err != nil {
		return rec, fmt.Errorf("entry: %w", err)
	}
	rec.Entry = entry

	optional := []struct {
		name string
		src  sql.NullString
		dst  **time.Time
	}{
		{"start", r.StartAt, &rec.Start},
		{"end", r.EndAt, &rec.End},
		{"due", r.DueAt, &rec.Due},
		{"until", r.UntilAt, &rec.Until},
		{"wait", r.WaitAt, &rec.Wait},
		{"scheduled", r.ScheduledAt, &rec.Scheduled},
	}
	for _, o := range optional {
		if !o.src.Valid || o.src.String == "" {
			continue
		}
		t, err := parseTime(o.src.String)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = &t
	}
	return rec, nil
}

func rowFromRecord(rec task.Record) (TaskRow, error) {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return TaskRow{}, fmt.Errorf("encode tags: %w", err)
	}

	deps := make([]string, 0, len(rec.Depends))
	for _, d := range rec.Depends {
		deps = append(deps, d.String())
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return TaskRow{}, fmt.Errorf("encode depends: %w", err)
	}

	attrs := make(map[string]attrValue, len(rec.Attrs))
	for k, v := range rec.Attrs {
		attrs[k] = fromValue(v)
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return TaskRow{}, fmt.Errorf("encode attrs: %w", err)
	}

	return TaskRow{
		UUID:        rec.UUID.String(),
		Status:      strings.ToLower(rec.Status.String()),
		Description: rec.Description,
		Project:     rec.Project,
		Tags:        string(tagsJSON),
		Depends:     string(depsJSON),
		Attrs:       string(attrsJSON),
		Urgency:     rec.Urgency,
		Annotations: rec.Annotations,
		EntryAt:     formatTime(rec.Entry),
		StartAt:     nullTime(rec.Start),
		EndAt:       nullTime(rec.End),
		DueAt:       nullTime(rec.Due),
		UntilAt:     nullTime(rec.Until),
		WaitAt:      nullTime(rec.Wait),
		ScheduledAt: nullTime(rec.Scheduled),
		ModifiedAt:  formatTime(time.Now()),
	}, nil
}

func fromValue(v task.Value) attrValue {
	switch v.Kind {
	case task.KindInt:
		return attrValue{Type: "i", Int: v.Int}
	case task.KindFloat:
		return attrValue{Type: "f", Float: v.Float}
	}
	return attrValue{Type: "s", Str: v.Str}
}

func (a attrValue) value() (task.Value, error) {
	switch a.Type {
	case "s":
		return task.StringValue(a.Str), nil
	case "i":
		return task.IntValue(a.Int), nil
	case "f":
		return task.FloatValue(a.Float), nil
	}
	return task.Value{}, fmt.Errorf("unknown value type %q", a.Type)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
