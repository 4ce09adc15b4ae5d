package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
	"github.com/google/uuid"
)

type CategoryStore struct {
	db DBTX
}

func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	var createdAt string
	if err := scanner.Scan(&c.ID, &c.Name, &c.Color, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt, _ = parseTime(createdAt)
	return &c, nil
}

func scanExperience(scanner interface{ Scan(...any) error }) (*model.CategoryExperience, error) {
	var e model.CategoryExperience
	var updatedAt string
	if err := scanner.Scan(&e.ID, &e.CategoryID, &e.TotalXP, &e.Level, &updatedAt); err != nil {
		return nil, err
	}
	e.UpdatedAt, _ = parseTime(updatedAt)
	return &e, nil
}

const (
	categoryCols   = `id, name, color, created_at`
	experienceCols = `id, category_id, total_xp, level, updated_at`
)

// Create inserts a category along with its empty experience row.
func (s *CategoryStore) Create(name, color string, now time.Time) (*model.Category, error) {
	id := uuid.NewString()
	ts := formatTime(now)
	if _, err := s.db.Exec(
		`INSERT INTO categories (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		id, name, color, ts,
	); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO category_experience (id, category_id, total_xp, level, updated_at) VALUES (?, ?, 0, 1, ?)`,
		uuid.NewString(), id, ts,
	); err != nil {
		return nil, fmt.Errorf("insert category experience: %w", err)
	}
	return s.GetByID(id)
}

func (s *CategoryStore) GetByID(id string) (*model.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) GetByName(name string) (*model.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// List returns categories ordered by name.
func (s *CategoryStore) List() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// Delete removes the category and its experience row. Subtasks keep existing
// with no category.
func (s *CategoryStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return affected(result)
}

func (s *CategoryStore) GetExperience(categoryID string) (*model.CategoryExperience, error) {
	e, err := scanExperience(s.db.QueryRow(
		`SELECT `+experienceCols+` FROM category_experience WHERE category_id = ?`, categoryID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category experience: %w", err)
	}
	return e, nil
}

func (s *CategoryStore) ListExperience() ([]model.CategoryExperience, error) {
	rows, err := s.db.Query(`SELECT ` + experienceCols + ` FROM category_experience`)
	if err != nil {
		return nil, fmt.Errorf("list category experience: %w", err)
	}
	defer rows.Close()

	var list []model.CategoryExperience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category experience: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// ApplyXP adds delta to the category's ledger and recomputes the level. It
// returns nil when the category has no ledger row. The returned bool reports a
// level increase.
func (s *CategoryStore) ApplyXP(categoryID string, delta int64, now time.Time) (*model.CategoryExperience, bool, error) {
	if delta < 0 {
		return nil, false, fmt.Errorf("apply xp: negative delta %d", delta)
	}
	current, err := s.GetExperience(categoryID)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, nil
	}

	ts := formatTime(now)
	total := current.TotalXP + delta
	level := scoring.Level(total)
	if _, err := s.db.Exec(
		`UPDATE category_experience SET total_xp = ?, level = ?, updated_at = ? WHERE category_id = ?`,
		total, level, ts, categoryID,
	); err != nil {
		return nil, false, fmt.Errorf("update category experience: %w", err)
	}
	e, err := s.GetExperience(categoryID)
	return e, level > current.Level, err
}
