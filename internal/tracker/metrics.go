package tracker

import (
	"github.com/dukerupert/devfocus/internal/metrics"
	"github.com/dukerupert/devfocus/internal/model"
)

func (s *Service) GetTaskMetrics(taskID string) (*model.TaskMetrics, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var m model.TaskMetrics
	err := s.withTx(func(st stores) error {
		task, err := requireTask(st, taskID)
		if err != nil {
			return err
		}
		subtasks, err := st.subtasks.ListByTask(taskID)
		if err != nil {
			return err
		}
		m = metrics.ForTask(*task, subtasks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetGeneralMetrics() (*model.GeneralMetrics, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var m model.GeneralMetrics
	err := s.withTx(func(st stores) error {
		tasks, err := st.tasks.List("")
		if err != nil {
			return err
		}
		subtasks, err := st.subtasks.List()
		if err != nil {
			return err
		}
		m = metrics.General(tasks, subtasks, s.clock())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetUserProfile rolls every category ledger into a global level and reports
// work streaks.
func (s *Service) GetUserProfile() (*model.UserProfile, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var p model.UserProfile
	err := s.withTx(func(st stores) error {
		experiences, err := st.categories.ListExperience()
		if err != nil {
			return err
		}
		subtasks, err := st.subtasks.List()
		if err != nil {
			return err
		}
		p = metrics.Profile(experiences, subtasks, s.clock())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
