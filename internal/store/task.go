package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/google/uuid"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var description, completedAt sql.NullString
	var status, createdAt, updatedAt string

	err := scanner.Scan(&t.ID, &t.Title, &description, &status, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.Status, err = model.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Description = nullString(description)
	t.CreatedAt, _ = parseTime(createdAt)
	t.UpdatedAt, _ = parseTime(updatedAt)
	t.CompletedAt = nullTime(completedAt)
	return &t, nil
}

const taskCols = `id, title, description, status, created_at, updated_at, completed_at`

func (s *TaskStore) Create(title string, description *string, now time.Time) (*model.Task, error) {
	id := uuid.NewString()
	ts := formatTime(now)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, nullStringArg(description), model.TaskStatusTodo, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks newest first. An empty status returns every task.
func (s *TaskStore) List(status model.TaskStatus) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateStatus sets the status and keeps completed_at set only while the task is done.
func (s *TaskStore) UpdateStatus(id string, status model.TaskStatus, now time.Time) (*model.Task, error) {
	var completedAt *time.Time
	if status == model.TaskStatusDone {
		completedAt = &now
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		status, formatTime(now), nullTimeArg(completedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the task and, through the foreign keys, its subtasks and
// sessions. It reports whether a row was deleted.
func (s *TaskStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return affected(result)
}
