package model

type UserProfile struct {
	TotalXP            int64   `json:"total_xp"`
	Level              int     `json:"level"`
	Title              string  `json:"title"`
	XPForNextLevel     int64   `json:"xp_for_next_level"`
	ProgressPercent    float64 `json:"progress_percent"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	LastWorkDate       *string `json:"last_work_date,omitempty"`
	StreakBonusPercent int     `json:"streak_bonus_percent"`
}
