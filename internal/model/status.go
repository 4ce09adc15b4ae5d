package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a status string has no matching variant.
var ErrInvalidStatus = errors.New("invalid status")

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// ParseTaskStatus converts the persisted or user-supplied form into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: task status %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type SubtaskStatus string

const (
	SubtaskStatusTodo       SubtaskStatus = "todo"
	SubtaskStatusInProgress SubtaskStatus = "in_progress"
	SubtaskStatusPaused     SubtaskStatus = "paused"
	SubtaskStatusDone       SubtaskStatus = "done"
)

// ParseSubtaskStatus converts the persisted or user-supplied form into a SubtaskStatus.
func ParseSubtaskStatus(s string) (SubtaskStatus, error) {
	st := SubtaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: subtask status %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s SubtaskStatus) Valid() bool {
	switch s {
	case SubtaskStatusTodo, SubtaskStatusInProgress, SubtaskStatusPaused, SubtaskStatusDone:
		return true
	}
	return false
}
