// Package backup writes encrypted snapshots of the devfocus database to a
// local directory, prunes old ones and restores them to a new file.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dukerupert/devfocus/internal/database"
	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/store"
)

var (
	ErrNoPassphrase = errors.New("backup: passphrase is required")
	ErrNotFound     = errors.New("backup: not found")
	ErrDestExists   = errors.New("backup: restore destination already exists")
)

// Database is the live store as the manager sees it. Both methods take the
// store lock, so backup bookkeeping is serialized with every other operation.
type Database interface {
	// Snapshot writes a consistent copy of the live database to dst.
	Snapshot(ctx context.Context, dst string) error
	// Backups runs fn against the backup records in one transaction.
	Backups(fn func(bs *store.BackupStore) error) error
}

// Config holds backup manager configuration.
type Config struct {
	Dir string
	// Retention is the number of completed backups kept on disk; 0 keeps all.
	Retention int
}

// State represents the backup manager state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateError   State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager runs backups one at a time.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	status Status

	db     Database
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(cfg Config, db Database, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger.With("component", "backup"),
		now:    time.Now,
		status: Status{State: StateIdle},
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// RunNow snapshots, encrypts and records a backup, then applies retention.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (*model.Backup, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = StateRunning
	m.status.Error = ""

	if err := os.MkdirAll(m.cfg.Dir, 0700); err != nil {
		return nil, m.fail(nil, fmt.Errorf("create backup dir: %w", err))
	}

	started := m.now().UTC()
	filename := fmt.Sprintf("devfocus-%s.db.enc", started.Format("20060102T150405.000000Z"))
	path := filepath.Join(m.cfg.Dir, filename)

	var record *model.Backup
	err := m.db.Backups(func(bs *store.BackupStore) error {
		var err error
		record, err = bs.Create(filename, path, started)
		return err
	})
	if err != nil {
		return nil, m.fail(nil, fmt.Errorf("create backup record: %w", err))
	}

	snapshot := filepath.Join(m.cfg.Dir, fmt.Sprintf(".snapshot-%s.db", record.ID))
	defer os.Remove(snapshot)

	if err := m.db.Snapshot(ctx, snapshot); err != nil {
		return nil, m.fail(record, fmt.Errorf("snapshot: %w", err))
	}
	size, err := EncryptFile(snapshot, path, passphrase)
	if err != nil {
		os.Remove(path)
		return nil, m.fail(record, fmt.Errorf("encrypt: %w", err))
	}

	finished := m.now().UTC()
	var completed *model.Backup
	err = m.db.Backups(func(bs *store.BackupStore) error {
		if err := bs.UpdateCompleted(record.ID, size, finished); err != nil {
			return err
		}
		var err error
		completed, err = bs.GetByID(record.ID)
		return err
	})
	if err != nil {
		return nil, m.fail(record, err)
	}
	m.status = Status{State: StateIdle, LastBackup: &finished}
	m.logger.Info("backup completed", "backup_id", record.ID, "file", filename, "size_bytes", size)

	if err := m.prune(); err != nil {
		m.logger.Warn("backup retention failed", "error", err)
	}
	return completed, nil
}

func (m *Manager) fail(record *model.Backup, err error) error {
	if record != nil {
		uerr := m.db.Backups(func(bs *store.BackupStore) error {
			return bs.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error())
		})
		if uerr != nil {
			m.logger.Error("record backup failure", "backup_id", record.ID, "error", uerr)
		}
	}
	m.status.State = StateError
	m.status.Error = err.Error()
	m.logger.Error("backup failed", "error", err)
	return err
}

// prune deletes completed backups beyond the retention count, newest kept.
func (m *Manager) prune() error {
	if m.cfg.Retention <= 0 {
		return nil
	}
	return m.db.Backups(func(bs *store.BackupStore) error {
		completed, err := bs.ListCompleted()
		if err != nil {
			return err
		}
		if len(completed) <= m.cfg.Retention {
			return nil
		}
		for _, b := range completed[m.cfg.Retention:] {
			if err := os.Remove(b.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", b.Path, err)
			}
			if err := bs.Delete(b.ID); err != nil {
				return err
			}
			m.logger.Debug("backup pruned", "backup_id", b.ID)
		}
		return nil
	})
}

// List returns recorded backups newest first.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	var backups []model.Backup
	err := m.db.Backups(func(bs *store.BackupStore) error {
		var err error
		backups, err = bs.List(limit)
		return err
	})
	return backups, err
}

// Restore decrypts backup id into dst after checking its integrity. dst must
// not exist, so the live database is never overwritten.
func (m *Manager) Restore(ctx context.Context, id, passphrase, dst string) error {
	if passphrase == "" {
		return ErrNoPassphrase
	}
	var record *model.Backup
	err := m.db.Backups(func(bs *store.BackupStore) error {
		var err error
		record, err = bs.GetByID(id)
		return err
	})
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestExists, dst)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp := dst + ".restore"
	defer os.Remove(tmp)
	if err := DecryptFile(record.Path, tmp, passphrase); err != nil {
		return err
	}
	if err := database.Check(tmp); err != nil {
		return fmt.Errorf("restored database: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("move restored database: %w", err)
	}
	m.logger.Info("backup restored", "backup_id", id, "dst", dst)
	return nil
}
