package source

import (
	"math"
	"time"

	"github.com/sadopc/taskview/internal/task"
)

// Default Taskwarrior urgency coefficients for the terms the embedded
// backend knows about.
const (
	urgencyActive    = 4.0
	urgencyDue       = 12.0
	urgencyScheduled = 5.0
	urgencyProject   = 1.0
	urgencyTags      = 1.0
	urgencyAge       = 2.0
	urgencyAgeMax    = 365.0
	urgencyWaiting   = -3.0
)

var urgencyPriority = map[string]float64{"H": 6.0, "M": 3.9, "L": 1.8}

func urgency(r task.Record, now time.Time) float64 {
	if r.Status.Terminal() {
		return 0
	}
	u := 0.0
	if r.Start != nil {
		u += urgencyActive
	}
	if r.Due != nil {
		u += urgencyDue * dueFactor(r.Due.Sub(now))
	}
	if r.Scheduled != nil && !r.Scheduled.After(now) {
		u += urgencyScheduled
	}
	if r.Wait != nil && r.Wait.After(now) {
		u += urgencyWaiting
	}
	if r.Project != "" {
		u += urgencyProject
	}
	switch n := len(r.Tags); {
	case n == 1:
		u += urgencyTags * 0.8
	case n == 2:
		u += urgencyTags * 0.9
	case n > 2:
		u += urgencyTags
	}
	if p, ok := r.Attrs["priority"]; ok {
		u += urgencyPriority[p.String()]
	}
	if !r.Entry.IsZero() {
		days := now.Sub(r.Entry).Hours() / 24
		u += urgencyAge * math.Min(math.Max(days, 0), urgencyAgeMax) / urgencyAgeMax
	}
	return math.Round(u*1000) / 1000
}

// dueFactor ramps from 0.2 two weeks out to 1.0 one week overdue.
func dueFactor(untilDue time.Duration) float64 {
	days := untilDue.Hours() / 24
	switch {
	case days <= -7:
		return 1.0
	case days >= 14:
		return 0.2
	}
	return ((-days+14)*0.8)/21 + 0.2
}
