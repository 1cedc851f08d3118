package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newRecord(desc string) task.Record {
	return task.Record{
		Description: desc,
		Status:      task.Pending,
		Entry:       time.Now().Add(-time.Hour).Truncate(time.Second),
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "taskdb")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateTask(newRecord("persist me"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Checkpoint(); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: no re-migration, data still there.
	s2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	row, err := s2.GetTask(id)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || row.Description != "persist me" {
		t.Fatalf("expected persisted task, got %+v", row)
	}
}

func TestDefaultDataDir(t *testing.T) {
	dir, err := DefaultDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	dep := uuid.New()
	rec := newRecord("write report")
	rec.Project = "work"
	rec.Tags = []string{"next", "home"}
	rec.Due = &due
	rec.Urgency = 4.5
	rec.Annotations = 2
	rec.Depends = []uuid.UUID{dep}
	rec.Attrs = map[string]task.Value{
		"priority": task.StringValue("H"),
		"estimate": task.IntValue(3),
		"weight":   task.FloatValue(2),
	}

	id, err := s.CreateTask(rec)
	if err != nil {
		t.Fatal(err)
	}
	if id == uuid.Nil {
		t.Fatal("expected a generated uuid")
	}

	row, err := s.GetTask(id)
	if err != nil {
		t.Fatal(err)
	}
	got, err := row.Record()
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "write report" || got.Project != "work" || got.Status != task.Pending {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "next" {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
	if got.Due == nil || !got.Due.Equal(due) {
		t.Fatalf("unexpected due: %v", got.Due)
	}
	if !got.Entry.Equal(rec.Entry) {
		t.Fatalf("entry changed: %v vs %v", got.Entry, rec.Entry)
	}
	if len(got.Depends) != 1 || got.Depends[0] != dep {
		t.Fatalf("unexpected depends: %v", got.Depends)
	}
	if got.Urgency != 4.5 || got.Annotations != 2 {
		t.Fatalf("unexpected urgency/annotations: %v %d", got.Urgency, got.Annotations)
	}
	if v := got.Attrs["weight"]; v.Kind != task.KindFloat || v.Float != 2 {
		t.Fatalf("float attr lost its kind: %+v", v)
	}
	if v := got.Attrs["estimate"]; v.Kind != task.KindInt || v.Int != 3 {
		t.Fatalf("int attr lost its kind: %+v", v)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	row, err := s.GetTask(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Fatalf("expected nil row, got %+v", row)
	}
}

func TestListTasksOrderedByEntry(t *testing.T) {
	s := newTestStore(t)
	newer := newRecord("newer")
	older := newRecord("older")
	older.Entry = newer.Entry.Add(-24 * time.Hour)
	s.CreateTask(newer)
	s.CreateTask(older)

	rows, err := s.ListTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Description != "older" {
		t.Fatalf("expected oldest first, got %s", rows[0].Description)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateTask(newRecord("draft"))
	row, _ := s.GetTask(id)
	rec, err := row.Record()
	if err != nil {
		t.Fatal(err)
	}

	end := time.Now().Truncate(time.Second)
	rec.Status = task.Completed
	rec.End = &end
	rec.Tags = nil
	if err := s.UpdateTask(rec); err != nil {
		t.Fatal(err)
	}

	row, _ = s.GetTask(id)
	got, _ := row.Record()
	if got.Status != task.Completed || got.End == nil || !got.End.Equal(end) {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Tags != nil {
		t.Fatalf("expected nil tags, got %v", got.Tags)
	}
}

func TestRecordRejectsCorruptRow(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateTask(newRecord("broken"))
	if _, err := s.db.Exec(`UPDATE tasks SET tags = 'not json' WHERE uuid = ?`, id.String()); err != nil {
		t.Fatal(err)
	}
	row, _ := s.GetTask(id)
	if _, err := row.Record(); err == nil {
		t.Fatal("expected conversion error")
	}
}

func TestDeletedRow(t *testing.T) {
	s := newTestStore(t)
	rec := newRecord("gone")
	rec.Status = task.Deleted
	id, _ := s.CreateTask(rec)
	row, _ := s.GetTask(id)
	if !row.Deleted() {
		t.Fatal("expected Deleted() to be true")
	}
}

// ============================================================
// Projects
// ============================================================

func TestListProjects(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"work", "home", "work", ""} {
		r := newRecord("t")
		r.Project = p
		s.CreateTask(r)
	}
	done := newRecord("finished")
	done.Project = "archive"
	done.Status = task.Completed
	s.CreateTask(done)

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %+v", projects)
	}
	if projects[0].Name != "home" || projects[1].Name != "work" || projects[1].Pending != 2 {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestListProjectsEmpty(t *testing.T) {
	s := newTestStore(t)
	projects, err := s.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if projects != nil {
		t.Fatalf("expected nil slice, got %d items", len(projects))
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	if _, ok, err := s.LookupSetting("report.next.filter"); err != nil || ok {
		t.Fatalf("expected missing setting, got ok=%v err=%v", ok, err)
	}

	s.SetSetting("report.next.filter", "status:pending")
	s.SetSetting("report.next.filter", "status:pending limit:5")

	v, ok, err := s.LookupSetting("report.next.filter")
	if err != nil || !ok || v != "status:pending limit:5" {
		t.Fatalf("unexpected setting: %q ok=%v err=%v", v, ok, err)
	}

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected upsert to keep one row, got %d", len(all))
	}

	s.SetSetting("report.a.columns", "id")
	all, err = s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Key != "report.a.columns" || all[1].Key != "report.next.filter" {
		t.Fatalf("settings not ordered by key: %+v", all)
	}
}
