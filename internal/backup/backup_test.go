package backup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/devfocus/internal/database"
	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/tracker"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// failingSnapshot keeps the real backup records but cannot copy the database.
type failingSnapshot struct {
	*tracker.Service
}

func (failingSnapshot) Snapshot(context.Context, string) error {
	return errors.New("disk full")
}

func setupManager(t *testing.T, retention int) (*Manager, *tracker.Service, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	svc := tracker.New(db, tracker.WithLogger(discard))
	t.Cleanup(func() { svc.Close() })

	dir := filepath.Join(t.TempDir(), "backups")
	m := NewManager(Config{Dir: dir, Retention: retention}, svc, discard)

	tick := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return m, svc, dir
}

func TestRunNowAndRestore(t *testing.T) {
	m, svc, dir := setupManager(t, 5)
	ctx := context.Background()

	if _, err := svc.CreateTask("survive the backup", nil); err != nil {
		t.Fatalf("create task: %v", err)
	}

	b, err := m.RunNow(ctx, "passphrase")
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if b.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusCompleted)
	}
	if b.SizeBytes == 0 {
		t.Error("expected non-zero size")
	}
	if filepath.Dir(b.Path) != dir {
		t.Errorf("path = %q, want inside %q", b.Path, dir)
	}
	if m.Status().State != StateIdle || m.Status().LastBackup == nil {
		t.Errorf("status = %+v, want idle with last backup", m.Status())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("files in backup dir = %d, want 1 (snapshot removed)", len(entries))
	}

	dst := filepath.Join(t.TempDir(), "restored.db")
	if err := m.Restore(ctx, b.ID, "wrong", dst); !errors.Is(err, ErrDecrypt) {
		t.Errorf("restore with wrong passphrase err = %v, want ErrDecrypt", err)
	}
	if err := m.Restore(ctx, b.ID, "passphrase", dst); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := database.Open(dst)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer restored.Close()
	var n int
	restored.QueryRow(`SELECT COUNT(*) FROM tasks WHERE title = 'survive the backup'`).Scan(&n)
	if n != 1 {
		t.Errorf("tasks in restored db = %d, want 1", n)
	}

	if err := m.Restore(ctx, b.ID, "passphrase", dst); !errors.Is(err, ErrDestExists) {
		t.Errorf("restore over existing file err = %v, want ErrDestExists", err)
	}
}

func TestRunNowRequiresPassphrase(t *testing.T) {
	m, _, _ := setupManager(t, 5)
	if _, err := m.RunNow(context.Background(), ""); !errors.Is(err, ErrNoPassphrase) {
		t.Errorf("err = %v, want ErrNoPassphrase", err)
	}
}

func TestRetention(t *testing.T) {
	m, _, dir := setupManager(t, 2)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		b, err := m.RunNow(ctx, "passphrase")
		if err != nil {
			t.Fatalf("run backup %d: %v", i, err)
		}
		ids = append(ids, b.ID)
	}

	list, err := m.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("backups = %d, want 2", len(list))
	}
	for _, b := range list {
		if b.ID == ids[0] {
			t.Error("oldest backup should have been pruned")
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("files = %d, want 2", len(entries))
	}
}

func TestRunNowRecordsFailure(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	svc := tracker.New(db, tracker.WithLogger(discard))
	t.Cleanup(func() { svc.Close() })
	m := NewManager(Config{Dir: t.TempDir(), Retention: 3}, failingSnapshot{svc}, discard)

	if _, err := m.RunNow(context.Background(), "passphrase"); err == nil {
		t.Fatal("expected error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}

	list, err := m.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("records = %d, want 1", len(list))
	}
	if list[0].Status != model.BackupStatusFailed || list[0].ErrorMessage == "" {
		t.Errorf("record = %+v, want failed with message", list[0])
	}
}

func TestBackupsFailAfterClose(t *testing.T) {
	m, svc, _ := setupManager(t, 5)
	svc.Close()

	if _, err := m.List(0); !errors.Is(err, tracker.ErrStoreUnavailable) {
		t.Errorf("list after close err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := m.RunNow(context.Background(), "passphrase"); !errors.Is(err, tracker.ErrStoreUnavailable) {
		t.Errorf("run after close err = %v, want ErrStoreUnavailable", err)
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	m, _, _ := setupManager(t, 5)
	err := m.Restore(context.Background(), "missing", "passphrase", filepath.Join(t.TempDir(), "x.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRetentionZeroKeepsAll(t *testing.T) {
	m, _, dir := setupManager(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.RunNow(ctx, "passphrase"); err != nil {
			t.Fatalf("run backup %d: %v", i, err)
		}
	}

	list, err := m.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("backups = %d, want 3", len(list))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("files = %d, want 3", len(entries))
	}
}
