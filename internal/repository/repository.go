// Package repository declares the store capabilities handlers depend on.
// gormrepo backs them with postgres, memory with process-local maps.
package repository

import (
	"context"
	"errors"
	"time"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/domain/users"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Artwork list sort keys.
const (
	SortDefault   = ""
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortPopular   = "popular"
)

type ArtworkFilter struct {
	CategoryID string
	// Status is empty to match every status.
	Status   catalog.ArtworkStatus
	Featured *bool
	Search   string
	Sort     string
	Limit    int
	Offset   int
}

// CategoryChanges lists the columns an update touches; unset fields are left alone.
type CategoryChanges struct {
	Name        patch.Field[string]
	Description patch.Field[string]
	Color       patch.Field[string]
	IsActive    patch.Field[bool]
	SortOrder   patch.Field[int]
}

func (c CategoryChanges) Empty() bool {
	return !c.Name.Set && !c.Description.Set && !c.Color.Set && !c.IsActive.Set && !c.SortOrder.Set
}

// ArtworkChanges lists the columns an update touches. A Null field writes SQL NULL.
type ArtworkChanges struct {
	Name          patch.Field[string]
	Description   patch.Field[string]
	Price         patch.Field[decimal.Decimal]
	OriginalPrice patch.Field[decimal.Decimal]
	Medium        patch.Field[string]
	Dimensions    patch.Field[string]
	Year          patch.Field[int]
	Status        patch.Field[catalog.ArtworkStatus]
	IsActive      patch.Field[bool]
	IsFeatured    patch.Field[bool]
	CategoryID    patch.Field[string]
}

type CategoryRepository interface {
	// ListActive orders by sort order then name and fills ArtworkCount with active artworks.
	ListActive(ctx context.Context) ([]catalog.Category, error)
	FindActive(ctx context.Context, id string) (*catalog.Category, error)
	// FindActiveWithArtworks nests the category's active artworks, newest first.
	FindActiveWithArtworks(ctx context.Context, id string) (*catalog.Category, error)
	// ActiveNameTaken compares case-insensitively, skipping excludeID.
	ActiveNameTaken(ctx context.Context, name, excludeID string) (bool, error)
	NextSortOrder(ctx context.Context) (int, error)
	CountActiveArtworks(ctx context.Context, id string) (int64, error)
	Create(ctx context.Context, c *catalog.Category) error
	Update(ctx context.Context, id string, ch CategoryChanges) error
	Deactivate(ctx context.Context, id string) error
}

type ArtworkRepository interface {
	List(ctx context.Context, f ArtworkFilter) ([]catalog.Artwork, int64, error)
	// FindActive joins the category name/color and loads images, primary first.
	FindActive(ctx context.Context, id string) (*catalog.Artwork, error)
	IncrementViews(ctx context.Context, id string) error
	// Create inserts the artwork and, when primary is non-nil, its primary image atomically.
	Create(ctx context.Context, a *catalog.Artwork, primary *catalog.ArtworkImage) error
	Update(ctx context.Context, id string, ch ArtworkChanges) error
	// UpdateStatus changes status only when the current one is in from (any, if empty).
	UpdateStatus(ctx context.Context, id string, to catalog.ArtworkStatus, from ...catalog.ArtworkStatus) (bool, error)
	// Delete removes images then the artwork in one transaction and returns the removed images.
	Delete(ctx context.Context, id string) ([]catalog.ArtworkImage, error)

	// ReplacePrimaryImage overwrites the current primary image row or inserts one.
	ReplacePrimaryImage(ctx context.Context, artworkID string, img *catalog.ArtworkImage) error
	RemovePrimaryImage(ctx context.Context, artworkID string) ([]catalog.ArtworkImage, error)
	// AddImage makes the image primary when it asks to be or is the artwork's first image.
	AddImage(ctx context.Context, img *catalog.ArtworkImage) error
	SetPrimaryImage(ctx context.Context, artworkID, imageID string) error
	// DeleteImage promotes the oldest remaining image when the primary one is removed.
	DeleteImage(ctx context.Context, artworkID, imageID string) (*catalog.ArtworkImage, error)

	// ListActiveRefs returns id and updatedAt of every active artwork.
	ListActiveRefs(ctx context.Context) ([]catalog.Artwork, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*users.User, error)
	Create(ctx context.Context, u *users.User) error
	LinkGoogle(ctx context.Context, id, sub string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id string, token *string) error
	// UpdatePassword also clears any pending reset token.
	UpdatePassword(ctx context.Context, id, hash string) error
}

type AdminRepository interface {
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id string) (*users.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*users.AdminUser, error)
	Create(ctx context.Context, a *users.AdminUser) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// Pinger reports store health for /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}
