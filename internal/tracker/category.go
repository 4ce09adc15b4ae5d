package tracker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dukerupert/devfocus/internal/model"
	"github.com/dukerupert/devfocus/internal/scoring"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CreateCategory adds a category and its empty experience ledger. Names are
// case-folded before the uniqueness check.
func (s *Service) CreateCategory(name, color string) (*model.Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	color = strings.TrimSpace(color)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !colorPattern.MatchString(color) {
		return nil, fmt.Errorf("%w: color %q must look like #rgb or #rrggbb", ErrValidation, color)
	}

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var category *model.Category
	err := s.withTx(func(st stores) error {
		existing, err := st.categories.GetByName(name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		category, err = st.categories.Create(name, color, s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("category created", "category", name)
	return category, nil
}

func (s *Service) ListCategories() ([]model.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var categories []model.Category
	err := s.withTx(func(st stores) error {
		var err error
		categories, err = st.categories.List()
		return err
	})
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// DeleteCategory removes a category and its ledger. Subtasks that used it are
// kept without a category.
func (s *Service) DeleteCategory(categoryID string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.withTx(func(st stores) error {
		deleted, err := st.categories.Delete(categoryID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
		}
		return nil
	})
}

func (s *Service) GetCategoryExperience(categoryID string) (*model.CategoryExperience, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var exp *model.CategoryExperience
	err := s.withTx(func(st stores) error {
		var err error
		exp, err = st.categories.GetExperience(categoryID)
		if err != nil {
			return err
		}
		if exp == nil {
			return fmt.Errorf("%w: experience for category %s", ErrNotFound, categoryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// GetAllCategoryStats lists every category with its level progress. A category
// without a ledger row reports zero XP.
func (s *Service) GetAllCategoryStats() ([]model.CategoryStats, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var stats []model.CategoryStats
	err := s.withTx(func(st stores) error {
		categories, err := st.categories.List()
		if err != nil {
			return err
		}
		experiences, err := st.categories.ListExperience()
		if err != nil {
			return err
		}
		xpByCategory := make(map[string]int64, len(experiences))
		for _, e := range experiences {
			xpByCategory[e.CategoryID] = e.TotalXP
		}

		stats = make([]model.CategoryStats, 0, len(categories))
		for _, c := range categories {
			xp := xpByCategory[c.ID]
			level := scoring.Level(xp)
			stats = append(stats, model.CategoryStats{
				Category:        c,
				TotalXP:         xp,
				Level:           level,
				XPForNextLevel:  scoring.XPToNextLevel(xp),
				ProgressPercent: scoring.ProgressPercent(xp, level),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
