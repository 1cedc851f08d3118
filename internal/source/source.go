// Package source provides the two interchangeable task backends: Shell drives
// the Taskwarrior binary, Embedded keeps tasks in a local SQLite database.
package source

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/logging"
	"github.com/sadopc/taskview/internal/proc"
	"github.com/sadopc/taskview/internal/task"
)

// Source is implemented by every backend. Callers never need to know which
// one they hold.
type Source interface {
	// Export returns the tasks selected by filter for report. A non-empty
	// contextFilter narrows the selection further.
	Export(filter, report, contextFilter string) ([]task.Record, error)
	Add(description string, attrs []string) error
	MarkDone(ids []uuid.UUID) error
	Delete(ids []uuid.UUID) error
	Modify(ids []uuid.UUID, attrs []string) error
	// Detail returns nil, nil when no task has the given id.
	Detail(id uuid.UUID) (*task.Record, error)
	Sync() error

	Projects() ([]Project, error)
	ReportDefinition(name string) (columns, labels []string, err error)
	Close() error
}

// Project counts the pending tasks of one project.
type Project struct {
	Name    string
	Pending int
}

const (
	BackendShell    = "shell"
	BackendEmbedded = "embedded"
)

type Options struct {
	Backend string

	// Shell
	Binary string
	Runner proc.Runner

	// Embedded
	DataDir string
	// DefaultFilters maps a report name to the filter used when neither the
	// caller nor the database supplies one.
	DefaultFilters map[string]string

	Logger *logging.Logger
}

// Open builds the backend named by opts.Backend.
func Open(opts Options) (Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	switch opts.Backend {
	case "", BackendShell:
		runner := opts.Runner
		if runner == nil {
			runner = proc.Exec{}
		}
		return NewShell(runner, opts.Binary, logger.With("shell"))
	case BackendEmbedded:
		return OpenEmbedded(opts.DataDir, opts.DefaultFilters, logger.With("embedded"))
	}
	return nil, fmt.Errorf("unknown backend %q (want %s or %s)", opts.Backend, BackendShell, BackendEmbedded)
}

func countProjects(records []task.Record) []Project {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Project != "" && r.Status == task.Pending {
			counts[r.Project]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	projects := make([]Project, 0, len(counts))
	for name, n := range counts {
		projects = append(projects, Project{Name: name, Pending: n})
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects
}
