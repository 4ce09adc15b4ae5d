// Package tracker owns the task and subtask lifecycle: the session state
// machine, the category experience ledger and the metrics read paths. Every
// public method of Service is serialized by one lock and runs in one SQL
// transaction.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/devfocus/internal/store"
)

// DefaultMaxElapsed bounds caller-reported elapsed time to one day.
const DefaultMaxElapsed int64 = 24 * 60 * 60

type Service struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool

	now        func() time.Time
	logger     *slog.Logger
	maxElapsed int64
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMaxElapsed sets the largest elapsed value, in seconds, a caller may report.
func WithMaxElapsed(seconds int64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.maxElapsed = seconds
		}
	}
}

// New builds a Service over an opened and migrated database.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:         db,
		now:        time.Now,
		logger:     slog.Default(),
		maxElapsed: DefaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "tracker")
	return s
}

// Close marks the service unusable and closes the database. Later calls fail
// with ErrStoreUnavailable.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Service) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: service closed", ErrStoreUnavailable)
	}
	return nil
}

type stores struct {
	tasks      *store.TaskStore
	subtasks   *store.SubtaskStore
	sessions   *store.SessionStore
	categories *store.CategoryStore
	backups    *store.BackupStore
}

// withTx runs fn inside a transaction with stores bound to it. The caller must
// hold the lock.
func (s *Service) withTx(fn func(st stores) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	st := stores{
		tasks:      store.NewTaskStore(tx),
		subtasks:   store.NewSubtaskStore(tx),
		sessions:   store.NewSessionStore(tx),
		categories: store.NewCategoryStore(tx),
		backups:    store.NewBackupStore(tx),
	}
	if err := fn(st); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot writes a consistent copy of the database to dst with VACUUM INTO.
// It holds the lock so no transition lands halfway through the copy.
func (s *Service) Snapshot(ctx context.Context, dst string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	return nil
}

// Backups runs fn against the backup records in one transaction under the
// lock.
func (s *Service) Backups(fn func(bs *store.BackupStore) error) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.withTx(func(st stores) error {
		return fn(st.backups)
	})
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}
