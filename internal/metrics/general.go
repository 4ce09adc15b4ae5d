package metrics

import (
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
)

// WindowDays is the length of the trailing daily series, today included.
const WindowDays = 7

const dateLayout = "2006-01-02"

// General computes the global statistics over every task and subtask. Daily
// buckets use the UTC date of each completion; completions without a readable
// timestamp count toward totals only.
func General(tasks []model.Task, subtasks []model.Subtask, now time.Time) model.GeneralMetrics {
	var m model.GeneralMetrics

	today := utcDate(now)
	window := make([]model.DailyPoints, WindowDays)
	index := make(map[string]int, WindowDays)
	for i := range window {
		day := today.AddDate(0, 0, i-(WindowDays-1)).Format(dateLayout)
		window[i] = model.DailyPoints{Date: day}
		index[day] = i
	}

	addToDay := func(at *time.Time, points, completed int) {
		if at == nil || at.IsZero() {
			return
		}
		if i, ok := index[at.UTC().Format(dateLayout)]; ok {
			window[i].Points += points
			window[i].SubtasksCompleted += completed
		}
	}

	type progress struct {
		total, done int
		lastDone    *time.Time
	}
	byTask := make(map[string]*progress, len(tasks))

	var completedTime int64
	for _, st := range subtasks {
		p := byTask[st.TaskID]
		if p == nil {
			p = &progress{}
			byTask[st.TaskID] = p
		}
		p.total++
		if st.Status != model.SubtaskStatusDone {
			continue
		}
		p.done++
		if st.CompletedAt != nil && (p.lastDone == nil || st.CompletedAt.After(*p.lastDone)) {
			p.lastDone = st.CompletedAt
		}

		points := scoring.SubtaskPoints(st.TotalTimeSeconds)
		m.TotalPoints += points
		m.TotalSubtasksCompleted++
		completedTime += st.TotalTimeSeconds
		addToDay(st.CompletedAt, points, 1)
	}

	for _, t := range tasks {
		if t.Status == model.TaskStatusDone {
			m.TotalTasksCompleted++
		}
		p := byTask[t.ID]
		if p == nil {
			continue
		}
		bonus := scoring.TaskBonus(p.total, p.done)
		if bonus == 0 {
			continue
		}
		m.TotalPoints += bonus
		addToDay(p.lastDone, bonus, 0)
	}

	if m.TotalSubtasksCompleted > 0 {
		m.AverageCompletionTimeSeconds = float64(completedTime) / float64(m.TotalSubtasksCompleted)
	}

	for i := range window {
		m.PointsThisWeek += window[i].Points
		// Strictly greater keeps the earliest day on ties.
		if window[i].Points > 0 && (m.BestDay == nil || window[i].Points > m.BestDay.Points) {
			best := window[i]
			m.BestDay = &best
		}
	}
	m.PointsToday = window[WindowDays-1].Points
	m.PointsLast7Days = window
	return m
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
