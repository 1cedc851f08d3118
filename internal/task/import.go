package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the timestamp format used in Taskwarrior JSON exports.
const TimeLayout = "20060102T150405Z"

var knownKeys = map[string]bool{
	"id": true, "uuid": true, "description": true, "status": true, "project": true,
	"tags": true, "entry": true, "start": true, "end": true, "due": true, "until": true,
	"wait": true, "scheduled": true, "modified": true, "urgency": true, "depends": true,
	"annotations": true, "mask": true, "imask": true, "parent": true,
}

// ParseTime parses a Taskwarrior timestamp and returns it in local time.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse taskwarrior time %q: %w", s, err)
	}
	return t.Local(), nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Import decodes a Taskwarrior JSON export array. One malformed record
// fails the whole import.
func Import(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode task export: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, obj := range raw {
		r, err := decodeRecord(obj)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(obj map[string]any) (Record, error) {
	var r Record

	s, _ := obj["uuid"].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return r, fmt.Errorf("parse uuid %q: %w", s, err)
	}
	r.UUID = id

	r.Description, _ = obj["description"].(string)
	r.Project, _ = obj["project"].(string)

	status, _ := obj["status"].(string)
	if r.Status, err = ParseStatus(status); err != nil {
		return r, err
	}

	if n, ok := obj["id"].(json.Number); ok {
		v, err := n.Int64()
		if err != nil {
			return r, fmt.Errorf("parse id %q: %w", n, err)
		}
		r.ID = int(v)
	}
	if n, ok := obj["urgency"].(json.Number); ok {
		if r.Urgency, err = n.Float64(); err != nil {
			return r, fmt.Errorf("parse urgency %q: %w", n, err)
		}
	}

	if tags, ok := obj["tags"].([]any); ok {
		for _, t := range tags {
			if ts, ok := t.(string); ok {
				r.Tags = append(r.Tags, ts)
			}
		}
	}
	if anns, ok := obj["annotations"].([]any); ok {
		r.Annotations = len(anns)
	}

	if r.Depends, err = decodeDepends(obj["depends"]); err != nil {
		return r, err
	}

	entry, err := optionalTime(obj, "entry")
	if err != nil {
		return r, err
	}
	if entry == nil {
		return r, fmt.Errorf("task %s has no entry timestamp", r.UUID)
	}
	r.Entry = *entry

	fields := []struct {
		key string
		dst **time.Time
	}{
		{"start", &r.Start}, {"end", &r.End}, {"due", &r.Due}, {"until", &r.Until},
		{"wait", &r.Wait}, {"scheduled", &r.Scheduled},
	}
	for _, f := range fields {
		if *f.dst, err = optionalTime(obj, f.key); err != nil {
			return r, err
		}
	}

	for k, v := range obj {
		if knownKeys[k] {
			continue
		}
		val, ok := decodeValue(v)
		if !ok {
			continue
		}
		if r.Attrs == nil {
			r.Attrs = make(map[string]Value)
		}
		r.Attrs[k] = val
	}
	return r, nil
}

func optionalTime(obj map[string]any, key string) (*time.Time, error) {
	s, ok := obj[key].(string)
	if !ok || s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &t, nil
}

func decodeDepends(v any) ([]uuid.UUID, error) {
	var ids []string
	switch d := v.(type) {
	case nil:
		return nil, nil
	case string:
		// pre-2.6 exports encode dependencies as a comma separated string
		for _, s := range strings.Split(d, ",") {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, s)
			}
		}
	case []any:
		for _, e := range d {
			if s, ok := e.(string); ok {
				ids = append(ids, s)
			}
		}
	default:
		return nil, fmt.Errorf("unexpected depends value %v", v)
	}

	deps := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse dependency %q: %w", s, err)
		}
		deps = append(deps, id)
	}
	return deps, nil
}

func decodeValue(v any) (Value, bool) {
	switch x := v.(type) {
	case string:
		return StringValue(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i), true
		}
		if f, err := x.Float64(); err == nil {
			return FloatValue(f), true
		}
	}
	return Value{}, false
}
