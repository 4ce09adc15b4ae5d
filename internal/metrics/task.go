// Package metrics derives task, global and profile statistics from loaded
// records. Every function is pure: the same inputs always give the same output.
package metrics

import (
	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
)

// ForTask computes the metrics of one task from its subtasks. Each subtask's
// TotalTimeSeconds must already hold its historical (ended-session) total.
func ForTask(task model.Task, subtasks []model.Subtask) model.TaskMetrics {
	m := model.TaskMetrics{
		TaskID:           task.ID,
		TaskTitle:        task.Title,
		SubtasksTotal:    len(subtasks),
		SubtasksWithTime: make([]model.SubtaskWithTime, 0, len(subtasks)),
	}

	var completedTime int64
	efficient := 0
	for _, st := range subtasks {
		m.TotalTimeSeconds += st.TotalTimeSeconds
		m.SubtasksWithTime = append(m.SubtasksWithTime, model.SubtaskWithTime{
			Subtask:          st,
			TotalTimeSeconds: st.TotalTimeSeconds,
		})
		if st.Status != model.SubtaskStatusDone {
			continue
		}
		m.SubtasksCompleted++
		m.TotalPoints += scoring.SubtaskPoints(st.TotalTimeSeconds)
		completedTime += st.TotalTimeSeconds
		if scoring.IsEfficient(st.TotalTimeSeconds) {
			efficient++
		}
	}

	m.ComplexityBonus = scoring.TaskBonus(m.SubtasksTotal, m.SubtasksCompleted)
	m.TotalPoints += m.ComplexityBonus

	if m.SubtasksCompleted > 0 {
		m.AverageTimePerSubtask = float64(completedTime) / float64(m.SubtasksCompleted)
		m.EfficiencyRate = float64(efficient) / float64(m.SubtasksCompleted) * 100
	}

	if task.Status == model.TaskStatusDone && task.CompletedAt != nil {
		at := *task.CompletedAt
		m.CompletedAt = &at
	}
	return m
}
