package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/google/uuid"
)

// SessionStore persists the time sessions recorded against subtasks.
type SessionStore struct {
	db DBTX
}

func NewSessionStore(db DBTX) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.TimeSession, error) {
	var ts model.TimeSession
	var startedAt string
	var pausedAt, resumedAt, endedAt sql.NullString

	err := scanner.Scan(&ts.ID, &ts.SubtaskID, &startedAt, &pausedAt, &resumedAt, &endedAt, &ts.DurationSeconds)
	if err != nil {
		return nil, err
	}

	ts.StartedAt, _ = parseTime(startedAt)
	ts.PausedAt = nullTime(pausedAt)
	ts.ResumedAt = nullTime(resumedAt)
	ts.EndedAt = nullTime(endedAt)
	// A non-NULL but unreadable ended_at still closes the session.
	if endedAt.Valid && ts.EndedAt == nil {
		ts.EndedAt = &time.Time{}
	}
	return &ts, nil
}

const sessionCols = `id, subtask_id, started_at, paused_at, resumed_at, ended_at, duration_seconds`

// Create opens a new active session for the subtask.
func (s *SessionStore) Create(subtaskID string, now time.Time) (*model.TimeSession, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO time_sessions (id, subtask_id, started_at, duration_seconds) VALUES (?, ?, ?, 0)`,
		id, subtaskID, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s.GetByID(id)
}

func (s *SessionStore) GetByID(id string) (*model.TimeSession, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM time_sessions WHERE id = ?`, id)
	ts, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return ts, nil
}

// GetActive returns the subtask's session that has not ended, or nil.
func (s *SessionStore) GetActive(subtaskID string) (*model.TimeSession, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM time_sessions WHERE subtask_id = ? AND ended_at IS NULL`, subtaskID)
	ts, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return ts, nil
}

// ListBySubtask returns every session of a subtask, oldest first.
func (s *SessionStore) ListBySubtask(subtaskID string) ([]model.TimeSession, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionCols+` FROM time_sessions WHERE subtask_id = ? ORDER BY started_at ASC, rowid ASC`,
		subtaskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.TimeSession
	for rows.Next() {
		ts, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *ts)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) MarkPaused(id string, now time.Time, durationSeconds int64) (*model.TimeSession, error) {
	_, err := s.db.Exec(
		`UPDATE time_sessions SET paused_at = ?, duration_seconds = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(now), durationSeconds, id,
	)
	if err != nil {
		return nil, fmt.Errorf("pause session: %w", err)
	}
	return s.GetByID(id)
}

func (s *SessionStore) MarkResumed(id string, now time.Time) (*model.TimeSession, error) {
	_, err := s.db.Exec(
		`UPDATE time_sessions SET resumed_at = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	return s.GetByID(id)
}

// End closes the session; its duration is frozen from then on.
func (s *SessionStore) End(id string, now time.Time, durationSeconds int64) (*model.TimeSession, error) {
	_, err := s.db.Exec(
		`UPDATE time_sessions SET ended_at = ?, duration_seconds = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(now), durationSeconds, id,
	)
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return s.GetByID(id)
}

// UpdateDuration records the caller's running clock on an active session.
func (s *SessionStore) UpdateDuration(id string, durationSeconds int64) (*model.TimeSession, error) {
	_, err := s.db.Exec(
		`UPDATE time_sessions SET duration_seconds = ? WHERE id = ? AND ended_at IS NULL`,
		durationSeconds, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update session duration: %w", err)
	}
	return s.GetByID(id)
}
