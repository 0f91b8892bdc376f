package service

import (
	"context"
	"errors"
	"math"
	"path"
	"unicode/utf8"

	"gallery-api/internal/apperr"
	"gallery-api/internal/cache"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/logging"
	"gallery-api/internal/repository"
	"gallery-api/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ArtworkQuery is a normalised list request. Status is empty for ALL.
type ArtworkQuery struct {
	CategoryID string
	Status     catalog.ArtworkStatus
	Featured   *bool
	Search     string
	Sort       string
	Limit      int
	Offset     int
}

// DefaultArtworkQuery is the unfiltered first page, the only one cached.
func DefaultArtworkQuery() ArtworkQuery {
	return ArtworkQuery{Status: catalog.StatusAvailable, Limit: DefaultPageSize}
}

func (q ArtworkQuery) isDefault() bool {
	return q.CategoryID == "" &&
		q.Status == catalog.StatusAvailable &&
		q.Featured == nil &&
		q.Search == "" &&
		q.Sort == repository.SortDefault &&
		q.Limit == DefaultPageSize &&
		q.Offset == 0
}

type Pagination struct {
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"hasMore"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

type ArtworkPage struct {
	Artworks   []catalog.Artwork `json:"artworks"`
	Pagination Pagination        `json:"pagination"`
}

func paginate(total int64, limit, offset int) Pagination {
	p := Pagination{Total: total, Limit: limit, Offset: offset}
	p.HasMore = int64(offset+limit) < total
	if limit > 0 {
		p.Page = offset/limit + 1
		p.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return p
}

type ArtworkInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Medium        string
	Dimensions    string
	Year          *int
	Status        catalog.ArtworkStatus
	IsFeatured    bool
	CategoryID    string
	ImageURL      string
}

// ArtworkPatch is a partial update. ImageURL replaces the primary image;
// null removes it.
type ArtworkPatch struct {
	repository.ArtworkChanges
	ImageURL patch.Field[string]
}

type ArtworkService struct {
	artworks   repository.ArtworkRepository
	categories repository.CategoryRepository
	files      Files
	cache      *cache.ResourceCache
}

func NewArtworkService(artworks repository.ArtworkRepository, categories repository.CategoryRepository, files Files, c *cache.ResourceCache) *ArtworkService {
	return &ArtworkService{artworks: artworks, categories: categories, files: files, cache: c}
}

func artworkNotFound() *apperr.Error {
	return apperr.NotFound(apperr.CodeArtworkNotFound, "Artwork not found")
}

func invalidArtworkID() *apperr.Error {
	return apperr.BadRequest(apperr.CodeInvalidID, "Invalid artwork id")
}

// decorate fills the flat imageUrl clients show in listings.
func decorate(a *catalog.Artwork) {
	if a.Images == nil {
		a.Images = []catalog.ArtworkImage{}
	}
	if img := a.PrimaryImage(); img != nil {
		a.ImageURL = img.URL
	}
}

func (s *ArtworkService) List(ctx context.Context, q ArtworkQuery) (*ArtworkPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	cacheable := q.isDefault()
	if cacheable {
		var page ArtworkPage
		if s.cache.Get(ctx, cache.Artworks, &page) {
			return &page, nil
		}
	}
	gen := s.cache.Generation(cache.Artworks)

	list, total, err := s.artworks.List(ctx, repository.ArtworkFilter{
		CategoryID: q.CategoryID,
		Status:     q.Status,
		Featured:   q.Featured,
		Search:     q.Search,
		Sort:       q.Sort,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, wrap("list artworks", err)
	}
	for i := range list {
		decorate(&list[i])
	}
	page := &ArtworkPage{Artworks: list, Pagination: paginate(total, q.Limit, q.Offset)}
	if cacheable {
		s.cache.SetIfCurrent(ctx, cache.Artworks, gen, page)
	}
	return page, nil
}

// Get counts a view and returns the artwork including that view.
func (s *ArtworkService) Get(ctx context.Context, id string) (*catalog.Artwork, error) {
	if !validID(id) {
		return nil, invalidArtworkID()
	}
	if err := s.artworks.IncrementViews(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, artworkNotFound()
		}
		return nil, wrap("count view", err)
	}
	return s.find(ctx, id)
}

func (s *ArtworkService) find(ctx context.Context, id string) (*catalog.Artwork, error) {
	a, err := s.artworks.FindActive(ctx, id)
	if isNotFound(err) {
		return nil, artworkNotFound()
	}
	if err != nil {
		return nil, wrap("get artwork", err)
	}
	decorate(a)
	return a, nil
}

func (s *ArtworkService) requireCategory(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.BadRequest(apperr.CodeInvalidCategory, "Category does not exist")
	}
	_, err := s.categories.FindActive(ctx, id)
	if isNotFound(err) {
		return apperr.BadRequest(apperr.CodeInvalidCategory, "Category does not exist")
	}
	if err != nil {
		return wrap("find category", err)
	}
	return nil
}

func validateArtworkName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 200 {
		return apperr.Validation("Artwork name must be between 1 and 200 characters")
	}
	return nil
}

func validatePrice(field string, p decimal.Decimal) error {
	if p.IsNegative() {
		return apperr.Validation(field + " must not be negative")
	}
	return nil
}

func validateYear(y int) error {
	if y < 0 || y > 9999 {
		return apperr.Validation("year must be between 0 and 9999")
	}
	return nil
}

// imageFromURL records an image URL the client already holds, usually one
// returned by the upload endpoint.
func imageFromURL(url string) *catalog.ArtworkImage {
	name := storage.FilenameFromURL(url)
	if name == "" {
		name = path.Base(url)
	}
	return &catalog.ArtworkImage{Filename: name, OriginalName: name, URL: url}
}

func (s *ArtworkService) Create(ctx context.Context, in ArtworkInput) (*catalog.Artwork, error) {
	a := &catalog.Artwork{
		Name:          trimmed(in.Name),
		Description:   trimmed(in.Description),
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Medium:        trimmed(in.Medium),
		Dimensions:    trimmed(in.Dimensions),
		Year:          in.Year,
		Status:        in.Status,
		IsActive:      true,
		IsFeatured:    in.IsFeatured,
		CategoryID:    in.CategoryID,
	}
	if a.Status == "" {
		a.Status = catalog.StatusAvailable
	}
	if err := validateArtworkName(a.Name); err != nil {
		return nil, err
	}
	if err := validatePrice("price", a.Price); err != nil {
		return nil, err
	}
	if a.OriginalPrice != nil {
		if err := validatePrice("originalPrice", *a.OriginalPrice); err != nil {
			return nil, err
		}
	}
	if a.Year != nil {
		if err := validateYear(*a.Year); err != nil {
			return nil, err
		}
	}
	if !a.Status.Valid() {
		return nil, apperr.Validation("status must be AVAILABLE, SOLD or RESERVED")
	}
	if err := s.requireCategory(ctx, a.CategoryID); err != nil {
		return nil, err
	}

	var primary *catalog.ArtworkImage
	if url := trimmed(in.ImageURL); url != "" {
		primary = imageFromURL(url)
	}
	if err := s.artworks.Create(ctx, a, primary); err != nil {
		if isNotFound(err) {
			return nil, apperr.BadRequest(apperr.CodeInvalidCategory, "Category does not exist")
		}
		return nil, wrap("create artwork", err)
	}
	invalidateAll(ctx, s.cache)
	return s.find(ctx, a.ID)
}

func (s *ArtworkService) Update(ctx context.Context, id string, p ArtworkPatch) (*catalog.Artwork, error) {
	if !validID(id) {
		return nil, invalidArtworkID()
	}
	ch := p.ArtworkChanges
	if ch.Name.Cleared() || ch.Price.Cleared() || ch.Status.Cleared() || ch.CategoryID.Cleared() ||
		ch.IsActive.Cleared() || ch.IsFeatured.Cleared() {
		return nil, apperr.Validation("name, price, status, categoryId, isActive and isFeatured cannot be null")
	}
	// nullable text columns are stored as empty strings
	for _, f := range []*patch.Field[string]{&ch.Description, &ch.Medium, &ch.Dimensions} {
		if f.Cleared() {
			*f = patch.Of("")
		} else if f.Set {
			f.Value = trimmed(f.Value)
		}
	}
	if ch.Name.Set {
		ch.Name.Value = trimmed(ch.Name.Value)
		if err := validateArtworkName(ch.Name.Value); err != nil {
			return nil, err
		}
	}
	if ch.Price.Present() {
		if err := validatePrice("price", ch.Price.Value); err != nil {
			return nil, err
		}
	}
	if ch.OriginalPrice.Present() {
		if err := validatePrice("originalPrice", ch.OriginalPrice.Value); err != nil {
			return nil, err
		}
	}
	if ch.Year.Present() {
		if err := validateYear(ch.Year.Value); err != nil {
			return nil, err
		}
	}
	if ch.Status.Set && !ch.Status.Value.Valid() {
		return nil, apperr.Validation("status must be AVAILABLE, SOLD or RESERVED")
	}

	current, err := s.artworks.FindActive(ctx, id)
	if isNotFound(err) {
		return nil, artworkNotFound()
	}
	if err != nil {
		return nil, wrap("find artwork", err)
	}
	if ch.CategoryID.Set {
		if err := s.requireCategory(ctx, ch.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	if err := s.artworks.Update(ctx, id, ch); err != nil {
		if isNotFound(err) {
			return nil, artworkNotFound()
		}
		return nil, wrap("update artwork", err)
	}

	if err := s.applyImagePatch(ctx, current, p.ImageURL); err != nil {
		return nil, err
	}
	invalidateAll(ctx, s.cache)

	if ch.IsActive.Set && !ch.IsActive.Value {
		applyArtworkChanges(current, ch)
		decorate(current)
		return current, nil
	}
	return s.find(ctx, id)
}

func (s *ArtworkService) applyImagePatch(ctx context.Context, current *catalog.Artwork, f patch.Field[string]) error {
	if !f.Set {
		return nil
	}
	old := current.PrimaryImage()
	url := trimmed(f.Value)

	if f.Null || url == "" {
		removed, err := s.artworks.RemovePrimaryImage(ctx, current.ID)
		if err != nil {
			return wrap("remove primary image", err)
		}
		removeFiles(ctx, s.files, removed)
		return nil
	}
	if old != nil && old.IsPrimary && old.URL == url {
		return nil
	}
	if err := s.artworks.ReplacePrimaryImage(ctx, current.ID, imageFromURL(url)); err != nil {
		return wrap("replace primary image", err)
	}
	if old != nil && old.IsPrimary {
		removeFiles(ctx, s.files, []catalog.ArtworkImage{*old})
	}
	return nil
}

func applyArtworkChanges(a *catalog.Artwork, ch repository.ArtworkChanges) {
	if ch.Name.Set {
		a.Name = ch.Name.Value
	}
	if ch.Description.Set {
		a.Description = ch.Description.Value
	}
	if ch.Price.Set {
		a.Price = ch.Price.Value
	}
	if ch.OriginalPrice.Set {
		a.OriginalPrice = nil
		if ch.OriginalPrice.Present() {
			v := ch.OriginalPrice.Value
			a.OriginalPrice = &v
		}
	}
	if ch.Medium.Set {
		a.Medium = ch.Medium.Value
	}
	if ch.Dimensions.Set {
		a.Dimensions = ch.Dimensions.Value
	}
	if ch.Year.Set {
		a.Year = nil
		if ch.Year.Present() {
			v := ch.Year.Value
			a.Year = &v
		}
	}
	if ch.Status.Set {
		a.Status = ch.Status.Value
	}
	if ch.IsActive.Set {
		a.IsActive = ch.IsActive.Value
	}
	if ch.IsFeatured.Set {
		a.IsFeatured = ch.IsFeatured.Value
	}
	if ch.CategoryID.Set {
		a.CategoryID = ch.CategoryID.Value
	}
}

// Delete removes the artwork and its images atomically, then their files.
func (s *ArtworkService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return invalidArtworkID()
	}
	removed, err := s.artworks.Delete(ctx, id)
	if isNotFound(err) {
		return artworkNotFound()
	}
	if err != nil {
		return wrap("delete artwork", err)
	}
	invalidateAll(ctx, s.cache)
	removeFiles(ctx, s.files, removed)
	logging.Ctx(ctx).Info().Str("artwork_id", id).Int("images", len(removed)).Msg("artwork deleted")
	return nil
}

func (s *ArtworkService) SetPrimaryImage(ctx context.Context, artworkID, imageID string) (*catalog.Artwork, error) {
	if !validID(artworkID) {
		return nil, invalidArtworkID()
	}
	if !validID(imageID) {
		return nil, apperr.NotFound(apperr.CodeImageNotFound, "Image not found")
	}
	if _, err := s.find(ctx, artworkID); err != nil {
		return nil, err
	}
	if err := s.artworks.SetPrimaryImage(ctx, artworkID, imageID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(apperr.CodeImageNotFound, "Image not found")
		}
		return nil, wrap("set primary image", err)
	}
	s.cache.Invalidate(ctx, cache.Artworks)
	return s.find(ctx, artworkID)
}

func (s *ArtworkService) DeleteImage(ctx context.Context, artworkID, imageID string) (*catalog.Artwork, error) {
	if !validID(artworkID) {
		return nil, invalidArtworkID()
	}
	if !validID(imageID) {
		return nil, apperr.NotFound(apperr.CodeImageNotFound, "Image not found")
	}
	if _, err := s.find(ctx, artworkID); err != nil {
		return nil, err
	}
	img, err := s.artworks.DeleteImage(ctx, artworkID, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeImageNotFound, "Image not found")
		}
		return nil, wrap("delete image", err)
	}
	s.cache.Invalidate(ctx, cache.Artworks)
	removeFiles(ctx, s.files, []catalog.ArtworkImage{*img})
	return s.find(ctx, artworkID)
}
