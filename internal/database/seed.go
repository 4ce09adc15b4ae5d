package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is a category that is present on every startup.
type DefaultCategory struct {
	Name  string
	Color string
}

var DefaultCategories = []DefaultCategory{
	{Name: "frontend", Color: "#3b82f6"},
	{Name: "backend", Color: "#10b981"},
	{Name: "architecture", Color: "#8b5cf6"},
	{Name: "css", Color: "#ec4899"},
	{Name: "tailwind", Color: "#06b6d4"},
}

// SeedDefaultCategories inserts the default categories and their experience rows
// if they are absent. Existing rows are left untouched, so it is safe to run on
// every startup.
func SeedDefaultCategories(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(TimeLayout)
	for _, dc := range DefaultCategories {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO categories (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), dc.Name, dc.Color, now,
		); err != nil {
			return fmt.Errorf("insert category %q: %w", dc.Name, err)
		}

		var categoryID string
		if err := tx.QueryRow(`SELECT id FROM categories WHERE name = ?`, dc.Name).Scan(&categoryID); err != nil {
			return fmt.Errorf("lookup category %q: %w", dc.Name, err)
		}

		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO category_experience (id, category_id, total_xp, level, updated_at) VALUES (?, ?, 0, 1, ?)`,
			uuid.NewString(), categoryID, now,
		); err != nil {
			return fmt.Errorf("insert experience for %q: %w", dc.Name, err)
		}
	}
	return tx.Commit()
}

// TimeLayout is the fixed-width UTC layout used for every persisted timestamp, so
// that lexical order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"
