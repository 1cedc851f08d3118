package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status int

const (
	Pending Status = iota
	Completed
	Deleted
	Waiting
	Recurring
)

var statusNames = []string{"Pending", "Completed", "Deleted", "Waiting", "Recurring"}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return "Unknown"
	}
	return statusNames[s]
}

// Terminal reports whether no further status change is allowed.
func (s Status) Terminal() bool {
	return s == Completed || s == Deleted
}

func ParseStatus(v string) (Status, error) {
	for i, name := range statusNames {
		if strings.EqualFold(v, name) {
			return Status(i), nil
		}
	}
	return Pending, fmt.Errorf("unknown status %q", v)
}

type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
)

// Value is a user-defined attribute value.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Record is the backend-agnostic view of one task.
type Record struct {
	UUID        uuid.UUID
	ID          int // 0 when the store assigns no working-set id
	Description string
	Status      Status
	Project     string
	Tags        []string

	Entry     time.Time
	Start     *time.Time
	End       *time.Time
	Due       *time.Time
	Until     *time.Time
	Wait      *time.Time
	Scheduled *time.Time

	Urgency     float64
	Depends     []uuid.UUID
	Attrs       map[string]Value
	Annotations int
}

func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Date returns the named timestamp field, or nil when unset or unknown.
func (r Record) Date(field string) *time.Time {
	switch field {
	case "entry":
		if r.Entry.IsZero() {
			return nil
		}
		e := r.Entry
		return &e
	case "start":
		return r.Start
	case "end":
		return r.End
	case "due":
		return r.Due
	case "until":
		return r.Until
	case "wait":
		return r.Wait
	case "scheduled":
		return r.Scheduled
	}
	return nil
}
