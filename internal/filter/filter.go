// Package filter evaluates the small Taskwarrior-style filter language used
// by the embedded backend.
//
// A filter is a whitespace separated list of terms that must all hold:
//
//	status:<v>    case-insensitive substring of the status name
//	project:<v>   case-insensitive substring of the project; no project fails
//	+<tag>        the record carries the tag (case-insensitive)
//	-WAITING      the record has no wait date; any other -X is accepted and ignored
//	limit:<n>     not a predicate; caps the result ("page" means 25)
//
// Any other term is accepted and ignored.
package filter

import (
	"strconv"
	"strings"

	"github.com/sadopc/taskview/internal/task"
)

// PageSize is the row count selected by "limit:page".
const PageSize = 25

type kind int

const (
	kindStatus kind = iota
	kindProject
	kindTag
	kindNotWaiting
)

type term struct {
	kind  kind
	value string
}

// Query is a parsed filter.
type Query struct {
	terms   []term
	limit   int
	limited bool
}

func Parse(s string) Query {
	var q Query
	for _, f := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(f, "status:"):
			q.terms = append(q.terms, term{kindStatus, strings.ToLower(f[len("status:"):])})
		case strings.HasPrefix(f, "project:"):
			q.terms = append(q.terms, term{kindProject, strings.ToLower(f[len("project:"):])})
		case strings.HasPrefix(f, "limit:"):
			if n, ok := parseLimit(f[len("limit:"):]); ok && !q.limited {
				q.limit, q.limited = n, true
			}
		case len(f) > 1 && f[0] == '+':
			q.terms = append(q.terms, term{kindTag, f[1:]})
		case f == "-WAITING":
			q.terms = append(q.terms, term{kind: kindNotWaiting})
		}
	}
	return q
}

func parseLimit(v string) (int, bool) {
	if v == "page" {
		return PageSize, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Limit returns the row cap requested by a limit: term, if any.
func (q Query) Limit() (int, bool) {
	return q.limit, q.limited
}

func (q Query) Empty() bool {
	return len(q.terms) == 0 && !q.limited
}

func (q Query) Match(r task.Record) bool {
	for _, t := range q.terms {
		if !t.match(r) {
			return false
		}
	}
	return true
}

func (t term) match(r task.Record) bool {
	switch t.kind {
	case kindStatus:
		return strings.Contains(strings.ToLower(r.Status.String()), t.value)
	case kindProject:
		if r.Project == "" {
			return false
		}
		return strings.Contains(strings.ToLower(r.Project), t.value)
	case kindTag:
		return r.HasTag(t.value)
	case kindNotWaiting:
		return r.Wait == nil
	}
	return true
}

// Filter returns the records matching every predicate term, in order.
// The limit is not applied.
func (q Query) Filter(records []task.Record) []task.Record {
	if len(q.terms) == 0 {
		return records
	}
	out := make([]task.Record, 0, len(records))
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Truncate applies the limit, if any.
func (q Query) Truncate(records []task.Record) []task.Record {
	if q.limited && q.limit < len(records) {
		return records[:q.limit]
	}
	return records
}

// ExtractLimit returns the limit requested by s, independent of term order.
func ExtractLimit(s string) (int, bool) {
	return Parse(s).Limit()
}

// Apply filters records by s and then truncates them to its limit.
func Apply(s string, records []task.Record) []task.Record {
	q := Parse(s)
	return q.Truncate(q.Filter(records))
}
