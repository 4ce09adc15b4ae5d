package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/google/uuid"
)

type BackupStore struct {
	db DBTX
}

func NewBackupStore(db DBTX) *BackupStore {
	return &BackupStore{db: db}
}

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	var errMsg, startedAt, completedAt sql.NullString
	var status, createdAt string
	err := scanner.Scan(&b.ID, &b.Filename, &b.Path, &b.SizeBytes, &status, &errMsg, &startedAt, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	b.Status = model.BackupStatus(status)
	b.ErrorMessage = errMsg.String
	b.StartedAt = nullTime(startedAt)
	b.CompletedAt = nullTime(completedAt)
	b.CreatedAt, _ = parseTime(createdAt)
	return &b, nil
}

const backupCols = `id, filename, path, size_bytes, status, error_message, started_at, completed_at, created_at`

func (s *BackupStore) Create(filename, path string, now time.Time) (*model.Backup, error) {
	id := uuid.NewString()
	ts := formatTime(now)
	_, err := s.db.Exec(
		`INSERT INTO backups (id, filename, path, status, started_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, filename, path, model.BackupStatusPending, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id string) (*model.Backup, error) {
	b, err := scanBackup(s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", id, err)
	}
	return b, nil
}

// List returns backups newest first. A limit of zero or less returns all of them.
func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.list(`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// ListCompleted returns completed backups newest first.
func (s *BackupStore) ListCompleted() ([]model.Backup, error) {
	return s.list(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY completed_at DESC, rowid DESC`,
		model.BackupStatusCompleted,
	)
}

func (s *BackupStore) list(query string, args ...any) ([]model.Backup, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) UpdateStatus(id string, status model.BackupStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`,
		status, nullStringArg(errPtr), id,
	)
	if err != nil {
		return fmt.Errorf("update backup status: %w", err)
	}
	return nil
}

func (s *BackupStore) UpdateCompleted(id string, sizeBytes int64, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes, formatTime(now), id,
	)
	if err != nil {
		return fmt.Errorf("update backup completed: %w", err)
	}
	return nil
}

func (s *BackupStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

func (s *BackupStore) TotalSize() (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT SUM(size_bytes) FROM backups WHERE status = ?`, model.BackupStatusCompleted,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total backup size: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Int64, nil
}
