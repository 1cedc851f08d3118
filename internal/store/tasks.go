package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sadopc/taskview/internal/task"
)

const taskColumns = `uuid, status, description, project, tags, depends, attrs, urgency, annotations,
	entry_at, start_at, end_at, due_at, until_at, wait_at, scheduled_at, modified_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (TaskRow, error) {
	var r TaskRow
	err := sc.Scan(&r.UUID, &r.Status, &r.Description, &r.Project, &r.Tags, &r.Depends, &r.Attrs,
		&r.Urgency, &r.Annotations, &r.EntryAt, &r.StartAt, &r.EndAt, &r.DueAt, &r.UntilAt,
		&r.WaitAt, &r.ScheduledAt, &r.ModifiedAt)
	return r, err
}

// CreateTask inserts rec. A zero UUID is replaced with a fresh one.
func (s *Store) CreateTask(rec task.Record) (uuid.UUID, error) {
	if rec.UUID == uuid.Nil {
		rec.UUID = uuid.New()
	}
	row, err := rowFromRecord(rec)
	if err != nil {
		return uuid.Nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.UUID, row.Status, row.Description, row.Project, row.Tags, row.Depends, row.Attrs,
		row.Urgency, row.Annotations, row.EntryAt, row.StartAt, row.EndAt, row.DueAt, row.UntilAt,
		row.WaitAt, row.ScheduledAt, row.ModifiedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert task: %w", err)
	}
	return rec.UUID, nil
}

// GetTask returns the row for id, or nil when no such task exists.
func (s *Store) GetTask(id uuid.UUID) (*TaskRow, error) {
	row, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &row, nil
}

// ListTasks returns every stored row, deleted ones included, oldest first.
func (s *Store) ListTasks() ([]TaskRow, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY entry_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRow
	for rows.Next() {
		r, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, r)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites the stored task with the same UUID.
func (s *Store) UpdateTask(rec task.Record) error {
	row, err := rowFromRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET status = ?, description = ?, project = ?, tags = ?, depends = ?, attrs = ?,
			urgency = ?, annotations = ?, entry_at = ?, start_at = ?, end_at = ?, due_at = ?,
			until_at = ?, wait_at = ?, scheduled_at = ?, modified_at = ?
		WHERE uuid = ?`,
		row.Status, row.Description, row.Project, row.Tags, row.Depends, row.Attrs,
		row.Urgency, row.Annotations, row.EntryAt, row.StartAt, row.EndAt, row.DueAt,
		row.UntilAt, row.WaitAt, row.ScheduledAt, row.ModifiedAt, row.UUID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", rec.UUID, err)
	}
	return nil
}
