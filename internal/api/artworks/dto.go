package artworks

import (
	"strings"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/repository"
	"gallery-api/internal/service"

	"github.com/shopspring/decimal"
)

// CreateArtworkRequest: price is a pointer so a missing price is caught by
// "required" while an explicit 0 is allowed.
type CreateArtworkRequest struct {
	Name          string           `json:"name" binding:"required,max=200"`
	Description   string           `json:"description" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Medium        string           `json:"medium" binding:"max=120"`
	Dimensions    string           `json:"dimensions" binding:"max=120"`
	Year          *int             `json:"year"`
	Status        string           `json:"status" binding:"omitempty,artstatus"`
	IsFeatured    bool             `json:"isFeatured"`
	CategoryID    string           `json:"categoryId" binding:"required"`
	ImageURL      string           `json:"imageUrl"`
}

func (r CreateArtworkRequest) input() service.ArtworkInput {
	in := service.ArtworkInput{
		Name:          r.Name,
		Description:   r.Description,
		OriginalPrice: r.OriginalPrice,
		Medium:        r.Medium,
		Dimensions:    r.Dimensions,
		Year:          r.Year,
		IsFeatured:    r.IsFeatured,
		CategoryID:    strings.TrimSpace(r.CategoryID),
		ImageURL:      r.ImageURL,
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.Status != "" {
		in.Status, _ = catalog.ParseStatus(r.Status)
	}
	return in
}

type UpdateArtworkRequest struct {
	Name          patch.Field[string]          `json:"name"`
	Description   patch.Field[string]          `json:"description"`
	Price         patch.Field[decimal.Decimal] `json:"price"`
	OriginalPrice patch.Field[decimal.Decimal] `json:"originalPrice"`
	Medium        patch.Field[string]          `json:"medium"`
	Dimensions    patch.Field[string]          `json:"dimensions"`
	Year          patch.Field[int]             `json:"year"`
	Status        patch.Field[string]          `json:"status"`
	IsActive      patch.Field[bool]            `json:"isActive"`
	IsFeatured    patch.Field[bool]            `json:"isFeatured"`
	CategoryID    patch.Field[string]          `json:"categoryId"`
	ImageURL      patch.Field[string]          `json:"imageUrl"`
}

func (r UpdateArtworkRequest) toPatch() service.ArtworkPatch {
	status := patch.Field[catalog.ArtworkStatus]{Set: r.Status.Set, Null: r.Status.Null}
	if r.Status.Present() {
		// unknown values fail validation in the service
		status.Value = catalog.ArtworkStatus(strings.ToUpper(strings.TrimSpace(r.Status.Value)))
	}
	category := r.CategoryID
	if category.Present() {
		category.Value = strings.TrimSpace(category.Value)
	}
	return service.ArtworkPatch{
		ArtworkChanges: repository.ArtworkChanges{
			Name:          r.Name,
			Description:   r.Description,
			Price:         r.Price,
			OriginalPrice: r.OriginalPrice,
			Medium:        r.Medium,
			Dimensions:    r.Dimensions,
			Year:          r.Year,
			Status:        status,
			IsActive:      r.IsActive,
			IsFeatured:    r.IsFeatured,
			CategoryID:    category,
		},
		ImageURL: r.ImageURL,
	}
}
