package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"gallery-api/internal/apperr"
	"gallery-api/internal/cache"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/repository"
)

type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

type CategoryService struct {
	repo  repository.CategoryRepository
	cache *cache.ResourceCache
}

func NewCategoryService(repo repository.CategoryRepository, c *cache.ResourceCache) *CategoryService {
	return &CategoryService{repo: repo, cache: c}
}

func categoryNotFound() *apperr.Error {
	return apperr.NotFound(apperr.CodeCategoryNotFound, "Category not found")
}

func categoryExists(name string) *apperr.Error {
	return apperr.Conflict(apperr.CodeCategoryExists, fmt.Sprintf("Category %q already exists", name))
}

func validateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 100 {
		return apperr.Validation("Category name must be between 1 and 100 characters")
	}
	return nil
}

func validateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return apperr.Validation("Color must be a hex value like #1A2B3C")
	}
	return nil
}

// List returns active categories with their active artwork counts.
func (s *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	var cached []catalog.Category
	if s.cache.Get(ctx, cache.Categories, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation(cache.Categories)
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	s.cache.SetIfCurrent(ctx, cache.Categories, gen, list)
	return list, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*catalog.Category, error) {
	if !validID(id) {
		return nil, apperr.BadRequest(apperr.CodeInvalidID, "Invalid category id")
	}
	c, err := s.repo.FindActiveWithArtworks(ctx, id)
	if isNotFound(err) {
		return nil, categoryNotFound()
	}
	if err != nil {
		return nil, wrap("get category", err)
	}
	for i := range c.Artworks {
		decorate(&c.Artworks[i])
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*catalog.Category, error) {
	name := trimmed(in.Name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	color := trimmed(in.Color)
	if color == "" {
		color = catalog.DefaultCategoryColor
	}
	if err := validateColor(color); err != nil {
		return nil, err
	}

	taken, err := s.repo.ActiveNameTaken(ctx, name, "")
	if err != nil {
		return nil, wrap("check category name", err)
	}
	if taken {
		return nil, categoryExists(name)
	}
	order, err := s.repo.NextSortOrder(ctx)
	if err != nil {
		return nil, wrap("next sort order", err)
	}

	c := &catalog.Category{
		Name:        name,
		Description: trimmed(in.Description),
		Color:       color,
		IsActive:    true,
		SortOrder:   order,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, categoryExists(name)
		}
		return nil, wrap("create category", err)
	}
	s.cache.Invalidate(ctx, cache.Categories)
	return c, nil
}

// Update applies only the supplied fields. Null is rejected for every
// category field except description, which it clears.
func (s *CategoryService) Update(ctx context.Context, id string, ch repository.CategoryChanges) (*catalog.Category, error) {
	if !validID(id) {
		return nil, apperr.BadRequest(apperr.CodeInvalidID, "Invalid category id")
	}
	if ch.Name.Cleared() || ch.Color.Cleared() || ch.IsActive.Cleared() || ch.SortOrder.Cleared() {
		return nil, apperr.Validation("name, color, isActive and sortOrder cannot be null")
	}
	if ch.Description.Cleared() {
		ch.Description = patch.Of("")
	}

	before, err := s.repo.FindActive(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, categoryNotFound()
		}
		return nil, wrap("find category", err)
	}

	if ch.Name.Set {
		ch.Name.Value = trimmed(ch.Name.Value)
		if err := validateCategoryName(ch.Name.Value); err != nil {
			return nil, err
		}
		taken, err := s.repo.ActiveNameTaken(ctx, ch.Name.Value, id)
		if err != nil {
			return nil, wrap("check category name", err)
		}
		if taken {
			return nil, categoryExists(ch.Name.Value)
		}
	}
	if ch.Color.Set {
		ch.Color.Value = trimmed(ch.Color.Value)
		if err := validateColor(ch.Color.Value); err != nil {
			return nil, err
		}
	}
	if ch.SortOrder.Set && ch.SortOrder.Value < 0 {
		return nil, apperr.Validation("sortOrder must not be negative")
	}
	if ch.IsActive.Set && !ch.IsActive.Value {
		if err := s.ensureEmpty(ctx, id); err != nil {
			return nil, err
		}
	}

	if !ch.Empty() {
		if err := s.repo.Update(ctx, id, ch); err != nil {
			switch {
			case isNotFound(err):
				return nil, categoryNotFound()
			case errors.Is(err, repository.ErrDuplicate):
				return nil, categoryExists(ch.Name.Value)
			}
			return nil, wrap("update category", err)
		}
		s.cache.Invalidate(ctx, cache.Categories)
	}

	if ch.IsActive.Set && !ch.IsActive.Value {
		// no longer readable through FindActive
		applyCategoryChanges(before, ch)
		return before, nil
	}
	c, err := s.repo.FindActive(ctx, id)
	if err != nil {
		return nil, wrap("reload category", err)
	}
	return c, nil
}

func applyCategoryChanges(c *catalog.Category, ch repository.CategoryChanges) {
	if ch.Name.Set {
		c.Name = ch.Name.Value
	}
	if ch.Description.Set {
		c.Description = ch.Description.Value
	}
	if ch.Color.Set {
		c.Color = ch.Color.Value
	}
	if ch.IsActive.Set {
		c.IsActive = ch.IsActive.Value
	}
	if ch.SortOrder.Set {
		c.SortOrder = ch.SortOrder.Value
	}
}

func (s *CategoryService) ensureEmpty(ctx context.Context, id string) error {
	n, err := s.repo.CountActiveArtworks(ctx, id)
	if err != nil {
		return wrap("count artworks", err)
	}
	if n > 0 {
		return apperr.Conflict(apperr.CodeCategoryHasArtworks,
			fmt.Sprintf("Cannot delete category with %d artwork(s). Move or delete them first.", n))
	}
	return nil
}

// Delete deactivates a category that no active artwork references.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.BadRequest(apperr.CodeInvalidID, "Invalid category id")
	}
	if _, err := s.repo.FindActive(ctx, id); err != nil {
		if isNotFound(err) {
			return categoryNotFound()
		}
		return wrap("find category", err)
	}
	if err := s.ensureEmpty(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if isNotFound(err) {
			return categoryNotFound()
		}
		return wrap("delete category", err)
	}
	s.cache.Invalidate(ctx, cache.Categories)
	return nil
}
