package model

import "time"

type Subtask struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"task_id"`
	Title       string        `json:"title"`
	Status      SubtaskStatus `json:"status"`
	CategoryID  *string       `json:"category_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	// TotalTimeSeconds sums the durations of ended sessions only.
	TotalTimeSeconds int64     `json:"total_time_seconds"`
	Category         *Category `json:"category,omitempty"`
}

type SubtaskWithSession struct {
	Subtask Subtask      `json:"subtask"`
	Session *TimeSession `json:"session"`
}

// SubtaskCompletion is the result of completing a subtask.
type SubtaskCompletion struct {
	Subtask          Subtask             `json:"subtask"`
	PointsEarned     int                 `json:"points_earned"`
	TimeSpentSeconds int64               `json:"time_spent_seconds"`
	XPGained         int64               `json:"xp_gained"`
	Category         *Category           `json:"category,omitempty"`
	Experience       *CategoryExperience `json:"experience,omitempty"`
	LeveledUp        bool                `json:"leveled_up"`
}
