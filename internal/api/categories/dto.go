package categories

import (
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/repository"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateCategoryRequest keeps omitted and null apart for every field.
type UpdateCategoryRequest struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	Color       patch.Field[string] `json:"color"`
	IsActive    patch.Field[bool]   `json:"isActive"`
	SortOrder   patch.Field[int]    `json:"sortOrder"`
}

func (r UpdateCategoryRequest) changes() repository.CategoryChanges {
	return repository.CategoryChanges{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}
