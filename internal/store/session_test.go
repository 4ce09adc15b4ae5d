package store

import (
	"testing"
	"time"
)

func setupSession(t *testing.T) (*SessionStore, string) {
	t.Helper()
	db := setupTestDB(t)
	task, _ := NewTaskStore(db).Create("t", nil, baseTime)
	st, err := NewSubtaskStore(db).Create(task.ID, "s", nil, baseTime)
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	return NewSessionStore(db), st.ID
}

func TestSessionLifecycle(t *testing.T) {
	sess, subtaskID := setupSession(t)

	s, err := sess.Create(subtaskID, baseTime)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !s.Active() {
		t.Error("new session should be active")
	}
	if s.DurationSeconds != 0 {
		t.Errorf("duration = %d, want 0", s.DurationSeconds)
	}

	s, _ = sess.MarkPaused(s.ID, baseTime.Add(5*time.Minute), 300)
	if s.PausedAt == nil || s.DurationSeconds != 300 {
		t.Errorf("paused session = %+v", s)
	}

	s, _ = sess.MarkResumed(s.ID, baseTime.Add(10*time.Minute))
	if s.ResumedAt == nil {
		t.Error("expected resumed_at to be set")
	}

	s, err = sess.End(s.ID, baseTime.Add(20*time.Minute), 900)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if s.Active() {
		t.Error("ended session should not be active")
	}
	if s.DurationSeconds != 900 {
		t.Errorf("duration = %d, want 900", s.DurationSeconds)
	}

	// Ended sessions are frozen.
	s, _ = sess.UpdateDuration(s.ID, 5)
	if s.DurationSeconds != 900 {
		t.Errorf("duration after update on ended session = %d, want 900", s.DurationSeconds)
	}
}

func TestSessionGetActive(t *testing.T) {
	sess, subtaskID := setupSession(t)

	active, err := sess.GetActive(subtaskID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active session, got %+v", active)
	}

	s, _ := sess.Create(subtaskID, baseTime)
	active, _ = sess.GetActive(subtaskID)
	if active == nil || active.ID != s.ID {
		t.Errorf("active = %+v, want %s", active, s.ID)
	}
}

func TestSessionOneActivePerSubtask(t *testing.T) {
	sess, subtaskID := setupSession(t)

	if _, err := sess.Create(subtaskID, baseTime); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := sess.Create(subtaskID, baseTime.Add(time.Second)); err == nil {
		t.Error("expected second active session to be rejected")
	}
}

func TestSessionListBySubtask(t *testing.T) {
	sess, subtaskID := setupSession(t)

	first, _ := sess.Create(subtaskID, baseTime)
	sess.End(first.ID, baseTime.Add(time.Minute), 60)
	sess.Create(subtaskID, baseTime.Add(time.Hour))

	list, err := sess.ListBySubtask(subtaskID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("first = %s, want %s", list[0].ID, first.ID)
	}
	if !list[1].Active() {
		t.Error("second session should be active")
	}
}
