package model

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryExperience struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	TotalXP    int64     `json:"total_xp"`
	Level      int       `json:"level"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CategoryStats struct {
	Category        Category `json:"category"`
	TotalXP         int64    `json:"total_xp"`
	Level           int      `json:"level"`
	XPForNextLevel  int64    `json:"xp_for_next_level"`
	ProgressPercent float64  `json:"progress_percent"`
}
