package backup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs Manager.RunNow on a standard five-field cron expression.
type Scheduler struct {
	cron       *cron.Cron
	manager    *Manager
	passphrase string
	logger     *slog.Logger
}

func NewScheduler(m *Manager, passphrase string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:       cron.New(),
		manager:    m,
		passphrase: passphrase,
		logger:     logger.With("component", "backup-scheduler"),
	}
}

// Schedule registers the backup job. It must be called before Start.
func (s *Scheduler) Schedule(ctx context.Context, spec string) (cron.EntryID, error) {
	if s.passphrase == "" {
		return 0, ErrNoPassphrase
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(ctx) })
	if err != nil {
		return 0, fmt.Errorf("backup schedule %q: %w", spec, err)
	}
	return id, nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.manager.RunNow(ctx, s.passphrase); err != nil {
		s.logger.Error("scheduled backup failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries exposes the scheduled runs, mainly for display.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
