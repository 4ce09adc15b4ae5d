package scoring

import (
	"sort"
	"time"
)

type Title string

const (
	TitleNovice Title = "novice"
	TitleJunior Title = "junior"
	TitleMid    Title = "mid"
	TitleSenior Title = "senior"
	TitleExpert Title = "expert"
	TitleMaster Title = "master"
	TitleLegend Title = "legend"
)

var titleTiers = []struct {
	minLevel int
	title    Title
}{
	{50, TitleLegend},
	{30, TitleMaster},
	{20, TitleExpert},
	{15, TitleSenior},
	{10, TitleMid},
	{5, TitleJunior},
}

// TitleForLevel maps a global level onto its display tier.
func TitleForLevel(level int) Title {
	for _, tier := range titleTiers {
		if level >= tier.minLevel {
			return tier.title
		}
	}
	return TitleNovice
}

// Streaks computes the current and longest runs of consecutive UTC calendar days
// found in workDays. The current streak only counts if its last day is today or
// yesterday.
func Streaks(workDays []time.Time, today time.Time) (current, longest int) {
	if len(workDays) == 0 {
		return 0, 0
	}

	seen := make(map[time.Time]bool, len(workDays))
	days := make([]time.Time, 0, len(workDays))
	for _, d := range workDays {
		day := utcDay(d)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	t := utcDay(today)
	if last.Equal(t) || last.Equal(t.AddDate(0, 0, -1)) {
		current = run
	}
	return current, longest
}

// StreakBonusPercent is 5% per full week of streak, capped at 50%.
func StreakBonusPercent(streak int) int {
	bonus := (streak / 7) * 5
	if bonus > 50 {
		return 50
	}
	return bonus
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
