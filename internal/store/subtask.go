package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/google/uuid"
)

type SubtaskStore struct {
	db DBTX
}

func NewSubtaskStore(db DBTX) *SubtaskStore {
	return &SubtaskStore{db: db}
}

func scanSubtask(scanner interface{ Scan(...any) error }) (*model.Subtask, error) {
	var st model.Subtask
	var categoryID, completedAt sql.NullString
	var status, createdAt, updatedAt string
	var catID, catName, catColor, catCreatedAt sql.NullString

	err := scanner.Scan(
		&st.ID, &st.TaskID, &st.Title, &status, &categoryID,
		&createdAt, &updatedAt, &completedAt, &st.TotalTimeSeconds,
		&catID, &catName, &catColor, &catCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Status, err = model.ParseSubtaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("subtask %s: %w", st.ID, err)
	}
	st.CategoryID = nullString(categoryID)
	st.CreatedAt, _ = parseTime(createdAt)
	st.UpdatedAt, _ = parseTime(updatedAt)
	st.CompletedAt = nullTime(completedAt)

	if catID.Valid {
		c := model.Category{ID: catID.String, Name: catName.String, Color: catColor.String}
		c.CreatedAt, _ = parseTime(catCreatedAt.String)
		st.Category = &c
	}
	return &st, nil
}

// subtaskSelect reads subtasks together with their historical total time (ended
// sessions only) and their category.
const subtaskSelect = `SELECT s.id, s.task_id, s.title, s.status, s.category_id,
	s.created_at, s.updated_at, s.completed_at,
	COALESCE((SELECT SUM(ts.duration_seconds) FROM time_sessions ts
		WHERE ts.subtask_id = s.id AND ts.ended_at IS NOT NULL), 0),
	c.id, c.name, c.color, c.created_at
	FROM subtasks s
	LEFT JOIN categories c ON c.id = s.category_id`

func (s *SubtaskStore) Create(taskID, title string, categoryID *string, now time.Time) (*model.Subtask, error) {
	id := uuid.NewString()
	ts := formatTime(now)
	_, err := s.db.Exec(
		`INSERT INTO subtasks (id, task_id, title, status, category_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, taskID, title, model.SubtaskStatusTodo, nullStringArg(categoryID), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubtaskStore) GetByID(id string) (*model.Subtask, error) {
	row := s.db.QueryRow(subtaskSelect+` WHERE s.id = ?`, id)
	st, err := scanSubtask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	return st, nil
}

// ListByTask returns a task's subtasks in creation order.
func (s *SubtaskStore) ListByTask(taskID string) ([]model.Subtask, error) {
	return s.list(subtaskSelect+` WHERE s.task_id = ? ORDER BY s.created_at ASC, s.rowid ASC`, taskID)
}

// List returns every subtask in creation order.
func (s *SubtaskStore) List() ([]model.Subtask, error) {
	return s.list(subtaskSelect + ` ORDER BY s.created_at ASC, s.rowid ASC`)
}

// FirstInProgress returns the oldest in-progress subtask of a task, or nil.
func (s *SubtaskStore) FirstInProgress(taskID string) (*model.Subtask, error) {
	row := s.db.QueryRow(
		subtaskSelect+` WHERE s.task_id = ? AND s.status = ? ORDER BY s.created_at ASC, s.rowid ASC LIMIT 1`,
		taskID, model.SubtaskStatusInProgress,
	)
	st, err := scanSubtask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first in-progress subtask: %w", err)
	}
	return st, nil
}

func (s *SubtaskStore) list(query string, args ...any) ([]model.Subtask, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []model.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, *st)
	}
	return subtasks, rows.Err()
}

// UpdateStatus sets the status and keeps completed_at set only while the subtask is done.
func (s *SubtaskStore) UpdateStatus(id string, status model.SubtaskStatus, now time.Time) error {
	var completedAt *time.Time
	if status == model.SubtaskStatusDone {
		completedAt = &now
	}
	_, err := s.db.Exec(
		`UPDATE subtasks SET status = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		status, formatTime(now), nullTimeArg(completedAt), id,
	)
	if err != nil {
		return fmt.Errorf("update subtask status: %w", err)
	}
	return nil
}

// Delete removes the subtask and its sessions. It reports whether a row was deleted.
func (s *SubtaskStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete subtask: %w", err)
	}
	return affected(result)
}
