package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/devfocus/internal/database"
	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := New(db,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() { svc.Close() })
	return svc, clock
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{fmt.Errorf("%w: task x", ErrNotFound), KindNotFound},
		{fmt.Errorf("%w: busy", ErrConflict), KindConflict},
		{fmt.Errorf("%w: bad", ErrValidation), KindValidation},
		{fmt.Errorf("%w: closed", ErrStoreUnavailable), KindStoreUnavailable},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestClosedServiceIsUnavailable(t *testing.T) {
	svc, _ := setupService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := svc.CreateTask("t", nil)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("create after close err = %v, want ErrStoreUnavailable", err)
	}
	_, err = svc.GetGeneralMetrics()
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("metrics after close err = %v, want ErrStoreUnavailable", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	svc, _ := setupService(t)
	if _, err := svc.CreateTask("persist me", nil); err != nil {
		t.Fatalf("create task: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "snapshot.db")
	if err := svc.Snapshot(context.Background(), dst); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	db, err := database.Open(dst)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE title = 'persist me'`).Scan(&n); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 1 {
		t.Errorf("tasks in snapshot = %d, want 1", n)
	}
}

// assertUntouched checks that a started subtask still looks exactly as it did
// before a failed completion.
func assertUntouched(t *testing.T, svc *Service, subtaskID string) {
	t.Helper()
	ws, err := svc.GetSubtaskWithSession(subtaskID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if ws.Subtask.Status != model.SubtaskStatusInProgress {
		t.Errorf("status = %q, want %q", ws.Subtask.Status, model.SubtaskStatusInProgress)
	}
	if ws.Subtask.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil", ws.Subtask.CompletedAt)
	}
	if ws.Session == nil || !ws.Session.Active() {
		t.Fatalf("session = %+v, want active session", ws.Session)
	}
	if ws.Session.DurationSeconds != 0 {
		t.Errorf("session duration = %d, want 0", ws.Session.DurationSeconds)
	}
	if ws.Subtask.TotalTimeSeconds != 0 {
		t.Errorf("total time = %d, want 0", ws.Subtask.TotalTimeSeconds)
	}
}

func TestCompleteRollsBackWhenLedgerUpdateFails(t *testing.T) {
	svc, _ := setupService(t)
	backend := categoryID(t, svc, "backend")
	sub := newSubtask(t, svc, &backend)
	if _, err := svc.StartSubtask(sub.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.db.Exec(`CREATE TRIGGER fail_xp BEFORE UPDATE ON category_experience
		BEGIN SELECT RAISE(ABORT, 'xp ledger locked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := svc.CompleteSubtask(sub.ID, 1200); err == nil {
		t.Fatal("expected complete to fail")
	}
	assertUntouched(t, svc, sub.ID)

	exp, err := svc.GetCategoryExperience(backend)
	if err != nil {
		t.Fatalf("get experience: %v", err)
	}
	if exp.TotalXP != 0 || exp.Level != 1 {
		t.Errorf("experience = %d xp / level %d, want 0 / 1", exp.TotalXP, exp.Level)
	}

	if _, err := svc.db.Exec(`DROP TRIGGER fail_xp`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	done, err := svc.CompleteSubtask(sub.ID, 1200)
	if err != nil {
		t.Fatalf("complete after failure: %v", err)
	}
	if done.XPGained != 1200 || done.Subtask.Status != model.SubtaskStatusDone {
		t.Errorf("completion = %+v", done)
	}
}

func TestCompleteRollsBackWhenLedgerMissing(t *testing.T) {
	svc, _ := setupService(t)
	css := categoryID(t, svc, "css")
	sub := newSubtask(t, svc, &css)
	if _, err := svc.StartSubtask(sub.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.db.Exec(`DELETE FROM category_experience WHERE category_id = ?`, css); err != nil {
		t.Fatalf("delete ledger: %v", err)
	}

	_, err := svc.CompleteSubtask(sub.ID, 600)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete err = %v, want ErrNotFound", err)
	}
	assertUntouched(t, svc, sub.ID)

	if _, err := svc.GetCategoryExperience(css); !errors.Is(err, ErrNotFound) {
		t.Errorf("experience err = %v, want ErrNotFound (no row created)", err)
	}
}

func TestConcurrentStartSingleWinner(t *testing.T) {
	svc, _ := setupService(t)
	sub := newSubtask(t, svc, nil)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		started   int
		conflicts int
		other     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartSubtask(sub.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				started++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Errorf("successful starts = %d, want 1", started)
	}
	if conflicts != workers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, workers-1)
	}
	for _, err := range other {
		t.Errorf("unexpected error: %v", err)
	}

	sessions := 0
	if err := svc.db.QueryRow(`SELECT COUNT(*) FROM time_sessions WHERE subtask_id = ?`, sub.ID).Scan(&sessions); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessions != 1 {
		t.Errorf("sessions = %d, want 1", sessions)
	}
}

func TestConcurrentHeartbeatsAndMetrics(t *testing.T) {
	svc, _ := setupService(t)
	sub := newSubtask(t, svc, nil)
	if _, err := svc.StartSubtask(sub.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 1; i <= workers; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			// Elapsed values arrive out of order; the lower ones are rejected.
			if _, err := svc.RecordElapsed(sub.ID, int64(i*10)); err != nil && !errors.Is(err, ErrValidation) {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.GetGeneralMetrics(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	ws, err := svc.GetSubtaskWithSession(sub.ID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if ws.Session.DurationSeconds != workers*10 {
		t.Errorf("duration = %d, want %d", ws.Session.DurationSeconds, workers*10)
	}
}

func TestBackupsRollsBackOnError(t *testing.T) {
	svc, clock := setupService(t)

	err := svc.Backups(func(bs *store.BackupStore) error {
		if _, err := bs.Create("a.db.enc", "/tmp/a.db.enc", clock.Now()); err != nil {
			return err
		}
		return errors.New("encrypt failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var n int
	if err := svc.Backups(func(bs *store.BackupStore) error {
		list, err := bs.List(0)
		n = len(list)
		return err
	}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if n != 0 {
		t.Errorf("backups = %d, want 0 after rollback", n)
	}

	svc.Close()
	if err := svc.Backups(func(*store.BackupStore) error { return nil }); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("backups after close err = %v, want ErrStoreUnavailable", err)
	}
}
