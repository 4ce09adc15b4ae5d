package tracker

import (
	"fmt"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
)

// StartSubtask moves a Todo subtask to InProgress and opens its session.
func (s *Service) StartSubtask(subtaskID string) (*model.TimeSession, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var session *model.TimeSession
	err := s.withTx(func(st stores) error {
		sub, err := requireSubtask(st, subtaskID)
		if err != nil {
			return err
		}
		if sub.Status != model.SubtaskStatusTodo {
			return fmt.Errorf("%w: cannot start subtask %s in status %s", ErrConflict, subtaskID, sub.Status)
		}
		active, err := st.sessions.GetActive(subtaskID)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("%w: subtask %s already has an active session", ErrConflict, subtaskID)
		}

		now := s.clock()
		if err := st.subtasks.UpdateStatus(subtaskID, model.SubtaskStatusInProgress, now); err != nil {
			return err
		}
		session, err = st.sessions.Create(subtaskID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("subtask started", "subtask_id", subtaskID, "session_id", session.ID)
	return session, nil
}

// PauseSubtask records the caller's elapsed seconds and moves the subtask to Paused.
func (s *Service) PauseSubtask(subtaskID string, elapsedSeconds int64) (*model.TimeSession, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var session *model.TimeSession
	err := s.withTx(func(st stores) error {
		active, err := s.activeSession(st, subtaskID, model.SubtaskStatusInProgress)
		if err != nil {
			return err
		}
		if err := s.checkElapsed(elapsedSeconds, active); err != nil {
			return err
		}

		now := s.clock()
		if err := st.subtasks.UpdateStatus(subtaskID, model.SubtaskStatusPaused, now); err != nil {
			return err
		}
		session, err = st.sessions.MarkPaused(active.ID, now, elapsedSeconds)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("subtask paused", "subtask_id", subtaskID, "elapsed", elapsedSeconds)
	return session, nil
}

// ResumeSubtask moves a Paused subtask back to InProgress. The session's
// duration is left untouched.
func (s *Service) ResumeSubtask(subtaskID string) (*model.TimeSession, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var session *model.TimeSession
	err := s.withTx(func(st stores) error {
		active, err := s.activeSession(st, subtaskID, model.SubtaskStatusPaused)
		if err != nil {
			return err
		}

		now := s.clock()
		if err := st.subtasks.UpdateStatus(subtaskID, model.SubtaskStatusInProgress, now); err != nil {
			return err
		}
		session, err = st.sessions.MarkResumed(active.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("subtask resumed", "subtask_id", subtaskID)
	return session, nil
}

// CompleteSubtask closes the active session with the final elapsed seconds,
// marks the subtask Done and credits points and category XP.
func (s *Service) CompleteSubtask(subtaskID string, elapsedSeconds int64) (*model.SubtaskCompletion, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var result *model.SubtaskCompletion
	err := s.withTx(func(st stores) error {
		active, err := s.activeSession(st, subtaskID, model.SubtaskStatusInProgress, model.SubtaskStatusPaused)
		if err != nil {
			return err
		}
		if err := s.checkElapsed(elapsedSeconds, active); err != nil {
			return err
		}

		now := s.clock()
		if _, err := st.sessions.End(active.ID, now, elapsedSeconds); err != nil {
			return err
		}
		if err := st.subtasks.UpdateStatus(subtaskID, model.SubtaskStatusDone, now); err != nil {
			return err
		}
		sub, err := requireSubtask(st, subtaskID)
		if err != nil {
			return err
		}

		result = &model.SubtaskCompletion{
			Subtask:          *sub,
			PointsEarned:     scoring.SubtaskPoints(elapsedSeconds),
			TimeSpentSeconds: elapsedSeconds,
			Category:         sub.Category,
		}
		if sub.CategoryID == nil {
			return nil
		}

		xp := scoring.XPForDuration(elapsedSeconds)
		exp, leveled, err := st.categories.ApplyXP(*sub.CategoryID, xp, now)
		if err != nil {
			return err
		}
		if exp == nil {
			return fmt.Errorf("%w: experience for category %s", ErrNotFound, *sub.CategoryID)
		}
		result.XPGained = xp
		result.Experience = exp
		result.LeveledUp = leveled
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{"subtask_id", subtaskID, "points", result.PointsEarned, "xp", result.XPGained}
	if result.Experience != nil {
		attrs = append(attrs, "level", result.Experience.Level)
	}
	s.logger.Info("subtask completed", attrs...)
	if result.LeveledUp {
		s.logger.Info("category leveled up", "category", result.Category.Name, "level", result.Experience.Level)
	}
	return result, nil
}

// RecordElapsed stores the caller's running clock on the active session
// without changing the subtask's status.
func (s *Service) RecordElapsed(subtaskID string, elapsedSeconds int64) (*model.TimeSession, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var session *model.TimeSession
	err := s.withTx(func(st stores) error {
		active, err := s.activeSession(st, subtaskID, model.SubtaskStatusInProgress, model.SubtaskStatusPaused)
		if err != nil {
			return err
		}
		if err := s.checkElapsed(elapsedSeconds, active); err != nil {
			return err
		}
		session, err = st.sessions.UpdateDuration(active.ID, elapsedSeconds)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSubtaskWithSession returns the subtask with its historical total and its
// active session, if any.
func (s *Service) GetSubtaskWithSession(subtaskID string) (*model.SubtaskWithSession, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var result *model.SubtaskWithSession
	err := s.withTx(func(st stores) error {
		sub, err := requireSubtask(st, subtaskID)
		if err != nil {
			return err
		}
		session, err := st.sessions.GetActive(subtaskID)
		if err != nil {
			return err
		}
		result = &model.SubtaskWithSession{Subtask: *sub, Session: session}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// activeSession loads the subtask, checks that its status is one of allowed and
// returns its active session.
func (s *Service) activeSession(st stores, subtaskID string, allowed ...model.SubtaskStatus) (*model.TimeSession, error) {
	sub, err := requireSubtask(st, subtaskID)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, a := range allowed {
		if sub.Status == a {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: subtask %s is %s", ErrConflict, subtaskID, sub.Status)
	}

	active, err := st.sessions.GetActive(subtaskID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("%w: subtask %s has no active session", ErrConflict, subtaskID)
	}
	return active, nil
}

func (s *Service) checkElapsed(elapsed int64, active *model.TimeSession) error {
	if elapsed < 0 {
		return fmt.Errorf("%w: elapsed seconds must not be negative", ErrValidation)
	}
	if elapsed > s.maxElapsed {
		return fmt.Errorf("%w: elapsed seconds %d exceeds maximum %d", ErrValidation, elapsed, s.maxElapsed)
	}
	if elapsed < active.DurationSeconds {
		return fmt.Errorf("%w: elapsed seconds %d is below recorded %d", ErrValidation, elapsed, active.DurationSeconds)
	}
	return nil
}
