package memory

import (
	"context"

	"gallery-api/internal/domain/catalog"
)

var demoCategories = []catalog.Category{
	{Name: "Paintings", Description: "Oil, acrylic and watercolour works", Color: "#B45309"},
	{Name: "Photography", Description: "Limited edition photographic prints", Color: "#1D4ED8"},
	{Name: "Sculpture", Description: "Works in stone, metal and wood", Color: "#047857"},
}

// SeedDemo fills an empty store with a few categories so a fresh
// DATA_SOURCE=memory server has something to show.
func (s *Store) SeedDemo(ctx context.Context) error {
	s.mu.RLock()
	empty := len(s.categories) == 0
	s.mu.RUnlock()
	if !empty {
		return nil
	}
	for i, c := range demoCategories {
		c.IsActive = true
		c.SortOrder = i + 1
		if err := s.Categories().Create(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}
