package model

import "time"

type SubtaskWithTime struct {
	Subtask          Subtask `json:"subtask"`
	TotalTimeSeconds int64   `json:"total_time_seconds"`
}

type TaskMetrics struct {
	TaskID                string            `json:"task_id"`
	TaskTitle             string            `json:"task_title"`
	TotalTimeSeconds      int64             `json:"total_time_seconds"`
	TotalPoints           int               `json:"total_points"`
	ComplexityBonus       int               `json:"complexity_bonus"`
	SubtasksCompleted     int               `json:"subtasks_completed"`
	SubtasksTotal         int               `json:"subtasks_total"`
	AverageTimePerSubtask float64           `json:"average_time_per_subtask"`
	EfficiencyRate        float64           `json:"efficiency_rate"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	SubtasksWithTime      []SubtaskWithTime `json:"subtasks_with_time"`
}

// DailyPoints is one UTC calendar day of activity. Date is formatted YYYY-MM-DD.
type DailyPoints struct {
	Date              string `json:"date"`
	Points            int    `json:"points"`
	SubtasksCompleted int    `json:"subtasks_completed"`
}

type GeneralMetrics struct {
	TotalPoints                  int           `json:"total_points"`
	PointsToday                  int           `json:"points_today"`
	PointsThisWeek               int           `json:"points_this_week"`
	PointsLast7Days              []DailyPoints `json:"points_last_7_days"`
	BestDay                      *DailyPoints  `json:"best_day"`
	TotalTasksCompleted          int           `json:"total_tasks_completed"`
	TotalSubtasksCompleted       int           `json:"total_subtasks_completed"`
	AverageCompletionTimeSeconds float64       `json:"average_completion_time_seconds"`
}
