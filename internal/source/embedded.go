package source

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/filter"
	"github.com/sadopc/taskview/internal/logging"
	"github.com/sadopc/taskview/internal/report"
	"github.com/sadopc/taskview/internal/store"
	"github.com/sadopc/taskview/internal/task"
)

// Embedded keeps tasks in a local SQLite database and evaluates filters
// itself.
type Embedded struct {
	mu       sync.Mutex
	store    *store.Store
	defaults map[string]string
	log      *logging.Logger
	now      func() time.Time
}

// OpenEmbedded opens the database inside dataDir, creating the directory
// when needed.
func OpenEmbedded(dataDir string, defaultFilters map[string]string, logger *logging.Logger) (*Embedded, error) {
	if dataDir == "" {
		dir, err := store.DefaultDataDir()
		if err != nil {
			return nil, &StorageError{Op: "locate data directory", Err: err}
		}
		dataDir = dir
	}
	st, err := store.Open(dataDir)
	if err != nil {
		return nil, &StorageError{Op: "open " + dataDir, Err: err}
	}
	logger.Debugf("opened task database in %s", dataDir)
	return NewEmbedded(st, defaultFilters, logger), nil
}

func NewEmbedded(st *store.Store, defaultFilters map[string]string, logger *logging.Logger) *Embedded {
	return &Embedded{store: st, defaults: defaultFilters, log: logger, now: time.Now}
}

func (e *Embedded) Export(filterExpr, reportName, contextFilter string) ([]task.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.store.ListTasks()
	if err != nil {
		return nil, &StorageError{Op: "list tasks", Err: err}
	}
	records := make([]task.Record, 0, len(rows))
	for _, row := range rows {
		if row.Deleted() {
			continue
		}
		rec, err := row.Record()
		if err != nil {
			return nil, &ConversionError{UUID: row.UUID, Err: err}
		}
		records = append(records, rec)
	}

	expr := strings.TrimSpace(filterExpr)
	if expr == "" {
		if expr, err = e.reportFilter(reportName); err != nil {
			return nil, err
		}
	}
	if c := strings.TrimSpace(contextFilter); c != "" {
		expr = strings.TrimSpace(expr + " " + c)
	}
	e.log.Debugf("export %s: %d tasks, filter %q", reportName, len(records), expr)
	return filter.Apply(expr, records), nil
}

func (e *Embedded) reportFilter(name string) (string, error) {
	v, ok, err := e.store.LookupSetting(fmt.Sprintf("report.%s.filter", name))
	if err != nil {
		return "", &StorageError{Op: "read report filter", Err: err}
	}
	if ok {
		return v, nil
	}
	return e.defaults[name], nil
}

func (e *Embedded) Add(description string, attrs []string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("add task: description is required")
	}
	now := e.now()
	rec := task.Record{
		UUID:        uuid.New(),
		Description: description,
		Status:      task.Pending,
		Entry:       now,
	}
	if err := applyAttrs(&rec, attrs); err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	rec.Urgency = urgency(rec, now)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.store.CreateTask(rec); err != nil {
		return &StorageError{Op: "add task", Err: err}
	}
	e.log.Infof("added task %s", rec.UUID)
	return nil
}

func (e *Embedded) MarkDone(ids []uuid.UUID) error {
	return e.finish(ids, task.Completed, "mark done")
}

func (e *Embedded) Delete(ids []uuid.UUID) error {
	return e.finish(ids, task.Deleted, "delete")
}

// finish moves open tasks to a terminal status. Tasks that are already
// completed or deleted keep their status and end time.
func (e *Embedded) finish(ids []uuid.UUID, status task.Status, op string) error {
	now := e.now()
	return e.update(ids, op, func(rec *task.Record) error {
		if rec.Status.Terminal() {
			return nil
		}
		rec.Status = status
		rec.End = &now
		rec.Start = nil
		rec.Urgency = 0
		return nil
	})
}

func (e *Embedded) Modify(ids []uuid.UUID, attrs []string) error {
	now := e.now()
	return e.update(ids, "modify", func(rec *task.Record) error {
		if err := applyAttrs(rec, attrs); err != nil {
			return err
		}
		rec.Urgency = urgency(*rec, now)
		return nil
	})
}

// update applies fn to each listed task. Unknown ids are skipped.
func (e *Embedded) update(ids []uuid.UUID, op string, fn func(*task.Record) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		row, err := e.store.GetTask(id)
		if err != nil {
			return &StorageError{Op: op, Err: err}
		}
		if row == nil {
			e.log.Debugf("%s: no task %s", op, id)
			continue
		}
		rec, err := row.Record()
		if err != nil {
			return &ConversionError{UUID: row.UUID, Err: err}
		}
		if err := fn(&rec); err != nil {
			return fmt.Errorf("%s %s: %w", op, id, err)
		}
		if err := e.store.UpdateTask(rec); err != nil {
			return &StorageError{Op: op, Err: err}
		}
	}
	return nil
}

func (e *Embedded) Detail(id uuid.UUID) (*task.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	row, err := e.store.GetTask(id)
	if err != nil {
		return nil, &StorageError{Op: "get task", Err: err}
	}
	if row == nil {
		return nil, nil
	}
	rec, err := row.Record()
	if err != nil {
		return nil, &ConversionError{UUID: row.UUID, Err: err}
	}
	return &rec, nil
}

// Sync has no remote to talk to; it checkpoints the write-ahead log.
func (e *Embedded) Sync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Checkpoint(); err != nil {
		return &StorageError{Op: "sync", Err: err}
	}
	return nil
}

func (e *Embedded) Projects() ([]Project, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	summaries, err := e.store.ListProjects()
	if err != nil {
		return nil, &StorageError{Op: "list projects", Err: err}
	}
	var projects []Project
	for _, s := range summaries {
		projects = append(projects, Project{Name: s.Name, Pending: s.Pending})
	}
	return projects, nil
}

// ReportDefinition reads report.<name>.columns and report.<name>.labels from
// the settings table. Both are comma-separated.
func (e *Embedded) ReportDefinition(name string) ([]string, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cols, ok, err := e.store.LookupSetting(fmt.Sprintf("report.%s.columns", name))
	if err != nil {
		return nil, nil, &StorageError{Op: "read report columns", Err: err}
	}
	if !ok || strings.TrimSpace(cols) == "" {
		return nil, nil, fmt.Errorf("report %q: %w", name, report.ErrUnknownReport)
	}
	labels, _, err := e.store.LookupSetting(fmt.Sprintf("report.%s.labels", name))
	if err != nil {
		return nil, nil, &StorageError{Op: "read report labels", Err: err}
	}
	return splitList(cols), splitList(labels), nil
}

// Reports lists the reports defined in the settings table, that is every
// name with non-empty report.<name>.columns, sorted.
func (e *Embedded) Reports() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings, err := e.store.GetAllSettings()
	if err != nil {
		return nil, &StorageError{Op: "list report settings", Err: err}
	}
	var names []string
	for _, st := range settings {
		rest, ok := strings.CutPrefix(st.Key, "report.")
		if !ok {
			continue
		}
		name, ok := strings.CutSuffix(rest, ".columns")
		if !ok || name == "" || strings.TrimSpace(st.Value) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SetReportSetting stores report.<name>.<key> (columns, labels or filter).
func (e *Embedded) SetReportSetting(name, key, value string) error {
	switch key {
	case "columns", "labels", "filter":
	default:
		return fmt.Errorf("unknown report setting %q", key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SetSetting(fmt.Sprintf("report.%s.%s", name, key), value); err != nil {
		return &StorageError{Op: "save report setting", Err: err}
	}
	return nil
}

func (e *Embedded) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Close()
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var _ Source = (*Embedded)(nil)
