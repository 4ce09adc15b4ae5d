package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func doneSubtask(taskID string, d int64, at *time.Time) model.Subtask {
	return model.Subtask{
		TaskID:           taskID,
		Status:           model.SubtaskStatusDone,
		TotalTimeSeconds: d,
		CompletedAt:      at,
	}
}

func todoSubtask(taskID string) model.Subtask {
	return model.Subtask{TaskID: taskID, Status: model.SubtaskStatusTodo}
}

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func TestForTaskBasics(t *testing.T) {
	task := model.Task{ID: "t1", Title: "login", Status: model.TaskStatusInProgress}
	subtasks := []model.Subtask{
		doneSubtask("t1", 1200, daysAgo(0)),
		doneSubtask("t1", 1800, daysAgo(0)),
		todoSubtask("t1"),
	}

	m := ForTask(task, subtasks)
	if m.TotalTimeSeconds != 3000 {
		t.Errorf("total time = %d, want 3000", m.TotalTimeSeconds)
	}
	if m.TotalPoints != 25 {
		t.Errorf("total points = %d, want 25", m.TotalPoints)
	}
	if m.SubtasksCompleted != 2 || m.SubtasksTotal != 3 {
		t.Errorf("completed/total = %d/%d, want 2/3", m.SubtasksCompleted, m.SubtasksTotal)
	}
	if m.AverageTimePerSubtask != 1500 {
		t.Errorf("average = %v, want 1500", m.AverageTimePerSubtask)
	}
	if m.EfficiencyRate != 50 {
		t.Errorf("efficiency = %v, want 50", m.EfficiencyRate)
	}
	if m.ComplexityBonus != 0 {
		t.Errorf("bonus = %d, want 0", m.ComplexityBonus)
	}
	if m.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil for unfinished task", m.CompletedAt)
	}
	if len(m.SubtasksWithTime) != 3 {
		t.Errorf("subtasks with time = %d, want 3", len(m.SubtasksWithTime))
	}
}

func TestForTaskNoCompletions(t *testing.T) {
	m := ForTask(model.Task{ID: "t1"}, []model.Subtask{todoSubtask("t1")})
	if m.EfficiencyRate != 0 || m.AverageTimePerSubtask != 0 {
		t.Errorf("efficiency/average = %v/%v, want 0/0", m.EfficiencyRate, m.AverageTimePerSubtask)
	}
}

func TestForTaskComplexityBonus(t *testing.T) {
	tests := []struct {
		name      string
		done      int
		todo      int
		wantBonus int
	}{
		{"five of five", 5, 0, 20},
		{"four of five", 4, 1, 0},
		{"four of four", 4, 0, 0},
		{"six of six", 6, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subtasks []model.Subtask
			for i := 0; i < tt.done; i++ {
				subtasks = append(subtasks, doneSubtask("t1", 600, daysAgo(0)))
			}
			for i := 0; i < tt.todo; i++ {
				subtasks = append(subtasks, todoSubtask("t1"))
			}
			m := ForTask(model.Task{ID: "t1"}, subtasks)
			if m.ComplexityBonus != tt.wantBonus {
				t.Errorf("bonus = %d, want %d", m.ComplexityBonus, tt.wantBonus)
			}
			if want := tt.done*15 + tt.wantBonus; m.TotalPoints != want {
				t.Errorf("total points = %d, want %d", m.TotalPoints, want)
			}
		})
	}
}

func TestForTaskCompletedAtOnlyWhenDone(t *testing.T) {
	at := now.Add(-time.Hour)
	done := ForTask(model.Task{ID: "t1", Status: model.TaskStatusDone, CompletedAt: &at}, nil)
	if done.CompletedAt == nil || !done.CompletedAt.Equal(at) {
		t.Errorf("completed_at = %v, want %v", done.CompletedAt, at)
	}
}

func TestForTaskIsIdempotent(t *testing.T) {
	task := model.Task{ID: "t1", Title: "x"}
	subtasks := []model.Subtask{doneSubtask("t1", 100, daysAgo(1)), todoSubtask("t1")}

	first := ForTask(task, subtasks)
	second := ForTask(task, subtasks)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("metrics differ between calls:\n%+v\n%+v", first, second)
	}
}

func TestGeneralWindowShape(t *testing.T) {
	m := General(nil, nil, now)

	if len(m.PointsLast7Days) != WindowDays {
		t.Fatalf("series length = %d, want %d", len(m.PointsLast7Days), WindowDays)
	}
	if m.PointsLast7Days[0].Date != "2026-03-04" {
		t.Errorf("oldest = %q, want %q", m.PointsLast7Days[0].Date, "2026-03-04")
	}
	if m.PointsLast7Days[6].Date != "2026-03-10" {
		t.Errorf("newest = %q, want %q", m.PointsLast7Days[6].Date, "2026-03-10")
	}
	for i := 1; i < len(m.PointsLast7Days); i++ {
		if m.PointsLast7Days[i].Date <= m.PointsLast7Days[i-1].Date {
			t.Errorf("dates not strictly increasing at %d", i)
		}
	}
	if m.BestDay != nil {
		t.Errorf("best day = %+v, want nil with no activity", m.BestDay)
	}
}

func TestGeneralPointsAndBuckets(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskStatusDone},
		{ID: "t2", Status: model.TaskStatusInProgress},
	}
	subtasks := []model.Subtask{
		doneSubtask("t1", 1200, daysAgo(0)), // 15 today
		doneSubtask("t1", 1600, daysAgo(2)), // 10
		doneSubtask("t2", 100, daysAgo(10)), // 15, outside window
		doneSubtask("t2", 100, nil),         // 15, no timestamp
		todoSubtask("t2"),
	}

	m := General(tasks, subtasks, now)
	if m.TotalPoints != 55 {
		t.Errorf("total points = %d, want 55", m.TotalPoints)
	}
	if m.PointsToday != 15 {
		t.Errorf("points today = %d, want 15", m.PointsToday)
	}
	if m.PointsThisWeek != 25 {
		t.Errorf("points this week = %d, want 25", m.PointsThisWeek)
	}
	if m.PointsLast7Days[4].Points != 10 || m.PointsLast7Days[4].SubtasksCompleted != 1 {
		t.Errorf("two days ago = %+v, want 10 points / 1 subtask", m.PointsLast7Days[4])
	}
	if m.TotalSubtasksCompleted != 4 {
		t.Errorf("subtasks completed = %d, want 4", m.TotalSubtasksCompleted)
	}
	if m.TotalTasksCompleted != 1 {
		t.Errorf("tasks completed = %d, want 1", m.TotalTasksCompleted)
	}
	if math.Abs(m.AverageCompletionTimeSeconds-750) > 1e-9 {
		t.Errorf("average = %v, want 750", m.AverageCompletionTimeSeconds)
	}
	if m.BestDay == nil || m.BestDay.Date != "2026-03-10" {
		t.Errorf("best day = %+v, want 2026-03-10", m.BestDay)
	}
}

func TestGeneralBestDayTieKeepsEarliest(t *testing.T) {
	subtasks := []model.Subtask{
		doneSubtask("t1", 100, daysAgo(1)),
		doneSubtask("t1", 200, daysAgo(3)),
	}
	m := General([]model.Task{{ID: "t1"}}, subtasks, now)
	if m.BestDay == nil {
		t.Fatal("expected best day")
	}
	if m.BestDay.Date != "2026-03-07" {
		t.Errorf("best day = %q, want earliest tied day %q", m.BestDay.Date, "2026-03-07")
	}
}

func TestGeneralComplexityBonusOnLastCompletionDay(t *testing.T) {
	var subtasks []model.Subtask
	for i := 0; i < 4; i++ {
		subtasks = append(subtasks, doneSubtask("t1", 2000, daysAgo(3)))
	}
	subtasks = append(subtasks, doneSubtask("t1", 2000, daysAgo(1)))
	tasks := []model.Task{{ID: "t1", Status: model.TaskStatusDone}}

	m := General(tasks, subtasks, now)
	if m.TotalPoints != 70 {
		t.Errorf("total points = %d, want 70", m.TotalPoints)
	}
	if got := m.PointsLast7Days[5].Points; got != 30 {
		t.Errorf("yesterday = %d, want 30 (10 + bonus)", got)
	}
	if got := m.PointsLast7Days[5].SubtasksCompleted; got != 1 {
		t.Errorf("yesterday completions = %d, want 1", got)
	}
	if got := m.PointsLast7Days[3].Points; got != 40 {
		t.Errorf("three days ago = %d, want 40", got)
	}
}

func TestGeneralUsesUTCDates(t *testing.T) {
	// 23:30 at UTC-5 is already the next day in UTC.
	local := time.Date(2026, 3, 9, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	subtasks := []model.Subtask{doneSubtask("t1", 100, &local)}

	m := General([]model.Task{{ID: "t1"}}, subtasks, now)
	if m.PointsToday != 15 {
		t.Errorf("points today = %d, want 15", m.PointsToday)
	}
}

func TestProfile(t *testing.T) {
	experiences := []model.CategoryExperience{
		{CategoryID: "a", TotalXP: 1200},
		{CategoryID: "b", TotalXP: 400},
	}
	subtasks := []model.Subtask{
		doneSubtask("t1", 100, daysAgo(0)),
		doneSubtask("t1", 100, daysAgo(1)),
		doneSubtask("t1", 100, daysAgo(2)),
		doneSubtask("t1", 100, daysAgo(5)),
		todoSubtask("t1"),
	}

	p := Profile(experiences, subtasks, now)
	if p.TotalXP != 1600 {
		t.Errorf("total xp = %d, want 1600", p.TotalXP)
	}
	if p.Level != 5 {
		t.Errorf("level = %d, want 5", p.Level)
	}
	if p.Title != "junior" {
		t.Errorf("title = %q, want %q", p.Title, "junior")
	}
	if p.XPForNextLevel != 900 {
		t.Errorf("xp for next level = %d, want 900", p.XPForNextLevel)
	}
	if p.CurrentStreak != 3 || p.LongestStreak != 3 {
		t.Errorf("streaks = %d/%d, want 3/3", p.CurrentStreak, p.LongestStreak)
	}
	if p.LastWorkDate == nil || *p.LastWorkDate != "2026-03-10" {
		t.Errorf("last work date = %v, want 2026-03-10", p.LastWorkDate)
	}
	if p.StreakBonusPercent != 0 {
		t.Errorf("streak bonus = %d, want 0", p.StreakBonusPercent)
	}
}

func TestProfileEmpty(t *testing.T) {
	p := Profile(nil, nil, now)
	if p.Level != 1 || p.Title != "novice" {
		t.Errorf("level/title = %d/%q, want 1/novice", p.Level, p.Title)
	}
	if p.LastWorkDate != nil {
		t.Errorf("last work date = %v, want nil", *p.LastWorkDate)
	}
}
