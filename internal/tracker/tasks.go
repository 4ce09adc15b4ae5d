package tracker

import (
	"fmt"
	"strings"

	"github.com/dukerupert/devfocus/internal/model"
)

func (s *Service) CreateTask(title string, description *string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrValidation)
	}
	description = trimOptional(description)

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var task *model.Task
	err := s.withTx(func(st stores) error {
		var err error
		task, err = st.tasks.Create(title, description, s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task created", "task_id", task.ID)
	return task, nil
}

// ListTasksWithActiveSubtasks returns tasks newest first, each with the first
// subtask currently in progress. An empty filter returns every task.
func (s *Service) ListTasksWithActiveSubtasks(statusFilter string) ([]model.TaskWithActiveSubtask, error) {
	var status model.TaskStatus
	if strings.TrimSpace(statusFilter) != "" {
		var err error
		status, err = model.ParseTaskStatus(statusFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var result []model.TaskWithActiveSubtask
	err := s.withTx(func(st stores) error {
		tasks, err := st.tasks.List(status)
		if err != nil {
			return err
		}
		now := s.clock()
		result = make([]model.TaskWithActiveSubtask, 0, len(tasks))
		for _, t := range tasks {
			item := model.TaskWithActiveSubtask{Task: t}
			active, err := st.subtasks.FirstInProgress(t.ID)
			if err != nil {
				return err
			}
			if active != nil {
				info := &model.ActiveSubtaskInfo{
					ID:               active.ID,
					Title:            active.Title,
					TotalTimeSeconds: active.TotalTimeSeconds,
				}
				session, err := st.sessions.GetActive(active.ID)
				if err != nil {
					return err
				}
				if session != nil {
					elapsed := int64(now.Sub(session.StartedAt).Seconds())
					if elapsed < 0 {
						elapsed = 0
					}
					info.CurrentSessionSeconds = &elapsed
				}
				item.ActiveSubtask = info
			}
			result = append(result, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetTaskWithSubtasks(taskID string) (*model.TaskWithSubtasks, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var result *model.TaskWithSubtasks
	err := s.withTx(func(st stores) error {
		task, err := requireTask(st, taskID)
		if err != nil {
			return err
		}
		subtasks, err := st.subtasks.ListByTask(taskID)
		if err != nil {
			return err
		}
		if subtasks == nil {
			subtasks = []model.Subtask{}
		}
		result = &model.TaskWithSubtasks{Task: *task, Subtasks: subtasks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTaskWithSubtasksAndSessions pairs every subtask of a task with its active
// session, if any.
func (s *Service) GetTaskWithSubtasksAndSessions(taskID string) (*model.TaskWithSubtasksAndSessions, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var result *model.TaskWithSubtasksAndSessions
	err := s.withTx(func(st stores) error {
		task, err := requireTask(st, taskID)
		if err != nil {
			return err
		}
		subtasks, err := st.subtasks.ListByTask(taskID)
		if err != nil {
			return err
		}
		result = &model.TaskWithSubtasksAndSessions{
			Task:     *task,
			Subtasks: make([]model.SubtaskWithSession, 0, len(subtasks)),
		}
		for _, sub := range subtasks {
			session, err := st.sessions.GetActive(sub.ID)
			if err != nil {
				return err
			}
			result.Subtasks = append(result.Subtasks, model.SubtaskWithSession{Subtask: sub, Session: session})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) UpdateTaskStatus(taskID, status string) (*model.Task, error) {
	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var task *model.Task
	err = s.withTx(func(st stores) error {
		if _, err := requireTask(st, taskID); err != nil {
			return err
		}
		task, err = st.tasks.UpdateStatus(taskID, parsed, s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task status updated", "task_id", taskID, "status", parsed)
	return task, nil
}

// DeleteTask removes a task with its subtasks and their sessions.
func (s *Service) DeleteTask(taskID string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.withTx(func(st stores) error {
		deleted, err := st.tasks.Delete(taskID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: task %s", ErrNotFound, taskID)
		}
		return nil
	})
}

func (s *Service) CreateSubtask(taskID, title string, categoryID *string) (*model.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: subtask title is required", ErrValidation)
	}
	categoryID = trimOptional(categoryID)

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var subtask *model.Subtask
	err := s.withTx(func(st stores) error {
		if _, err := requireTask(st, taskID); err != nil {
			return err
		}
		if categoryID != nil {
			c, err := st.categories.GetByID(*categoryID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("%w: category %s", ErrNotFound, *categoryID)
			}
		}
		var err error
		subtask, err = st.subtasks.Create(taskID, title, categoryID, s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("subtask created", "task_id", taskID, "subtask_id", subtask.ID)
	return subtask, nil
}

// DeleteSubtask removes a subtask and its sessions.
func (s *Service) DeleteSubtask(subtaskID string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.withTx(func(st stores) error {
		deleted, err := st.subtasks.Delete(subtaskID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: subtask %s", ErrNotFound, subtaskID)
		}
		return nil
	})
}

func requireTask(st stores, taskID string) (*model.Task, error) {
	task, err := st.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	return task, nil
}

func requireSubtask(st stores, subtaskID string) (*model.Subtask, error) {
	subtask, err := st.subtasks.GetByID(subtaskID)
	if err != nil {
		return nil, err
	}
	if subtask == nil {
		return nil, fmt.Errorf("%w: subtask %s", ErrNotFound, subtaskID)
	}
	return subtask, nil
}

// trimOptional trims s and maps blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
