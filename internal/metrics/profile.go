package metrics

import (
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
)

// Profile rolls every category ledger into one global level and derives work
// streaks from the completion dates of done subtasks.
func Profile(experiences []model.CategoryExperience, subtasks []model.Subtask, now time.Time) model.UserProfile {
	var p model.UserProfile
	for _, e := range experiences {
		p.TotalXP += e.TotalXP
	}
	p.Level = scoring.Level(p.TotalXP)
	p.Title = string(scoring.TitleForLevel(p.Level))
	p.XPForNextLevel = scoring.XPToNextLevel(p.TotalXP)
	p.ProgressPercent = scoring.ProgressPercent(p.TotalXP, p.Level)

	var workDays []time.Time
	var last time.Time
	for _, st := range subtasks {
		if st.Status != model.SubtaskStatusDone || st.CompletedAt == nil || st.CompletedAt.IsZero() {
			continue
		}
		workDays = append(workDays, *st.CompletedAt)
		if st.CompletedAt.After(last) {
			last = *st.CompletedAt
		}
	}

	p.CurrentStreak, p.LongestStreak = scoring.Streaks(workDays, now)
	p.StreakBonusPercent = scoring.StreakBonusPercent(p.CurrentStreak)
	if !last.IsZero() {
		day := last.UTC().Format(dateLayout)
		p.LastWorkDate = &day
	}
	return p
}
