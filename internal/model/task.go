package model

import "time"

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type TaskWithSubtasks struct {
	Task
	Subtasks []Subtask `json:"subtasks"`
}

// ActiveSubtaskInfo describes the subtask currently being worked on within a task.
// CurrentSessionSeconds is an approximation derived from the session start time.
type ActiveSubtaskInfo struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	TotalTimeSeconds      int64  `json:"total_time_seconds"`
	CurrentSessionSeconds *int64 `json:"current_session_seconds,omitempty"`
}

type TaskWithActiveSubtask struct {
	Task
	ActiveSubtask *ActiveSubtaskInfo `json:"active_subtask,omitempty"`
}

type TaskWithSubtasksAndSessions struct {
	Task
	Subtasks []SubtaskWithSession `json:"subtasks"`
}
