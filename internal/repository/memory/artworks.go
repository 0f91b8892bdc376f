package memory

import (
	"context"
	"sort"
	"strings"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/repository"

	"github.com/google/uuid"
)

type artworkStore Store

// artworkCopy detaches a from the store, attaching its images primary
// first. withCategory fills the joined category fields. Callers hold mu.
func (s *Store) artworkCopy(a *catalog.Artwork, withCategory bool) catalog.Artwork {
	cp := *a
	cp.Images = s.imagesOf(a.ID)
	if withCategory {
		if cat, ok := s.categories[a.CategoryID]; ok {
			cp.CategoryName = cat.Name
			cp.CategoryColor = cat.Color
		}
	}
	return cp
}

func (s *Store) imagesOf(artworkID string) []catalog.ArtworkImage {
	imgs := make([]catalog.ArtworkImage, 0)
	for _, img := range s.images {
		if img.ArtworkID == artworkID {
			imgs = append(imgs, *img)
		}
	}
	sort.Slice(imgs, func(i, j int) bool {
		if imgs[i].IsPrimary != imgs[j].IsPrimary {
			return imgs[i].IsPrimary
		}
		return imgs[i].CreatedAt.Before(imgs[j].CreatedAt)
	})
	return imgs
}

func matches(a *catalog.Artwork, f repository.ArtworkFilter) bool {
	if !a.IsActive {
		return false
	}
	if f.CategoryID != "" && a.CategoryID != f.CategoryID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Featured != nil && a.IsFeatured != *f.Featured {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.Description), q) ||
			strings.Contains(strings.ToLower(a.Medium), q)
	}
	return true
}

func less(sortKey string) func(a, b catalog.Artwork) bool {
	byCreated := func(a, b catalog.Artwork) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	switch sortKey {
	case repository.SortNewest:
		return func(a, b catalog.Artwork) bool { return byCreated(b, a) }
	case repository.SortPriceLow:
		return func(a, b catalog.Artwork) bool {
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
			return a.ID < b.ID
		}
	case repository.SortPriceHigh:
		return func(a, b catalog.Artwork) bool {
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
			return a.ID < b.ID
		}
	case repository.SortPopular:
		return func(a, b catalog.Artwork) bool {
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			return a.ID < b.ID
		}
	default:
		return byCreated
	}
}

func (r *artworkStore) List(ctx context.Context, f repository.ArtworkFilter) ([]catalog.Artwork, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]catalog.Artwork, 0)
	for _, a := range r.artworks {
		if matches(a, f) {
			all = append(all, (*Store)(r).artworkCopy(a, true))
		}
	}
	cmp := less(f.Sort)
	sort.Slice(all, func(i, j int) bool { return cmp(all[i], all[j]) })

	total := int64(len(all))
	if f.Offset >= len(all) {
		return make([]catalog.Artwork, 0), total, nil
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}

func (r *artworkStore) FindActive(ctx context.Context, id string) (*catalog.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.artworks[id]
	if !ok || !a.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := (*Store)(r).artworkCopy(a, true)
	return &cp, nil
}

func (r *artworkStore) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[id]
	if !ok || !a.IsActive {
		return repository.ErrNotFound
	}
	a.ViewCount++
	return nil
}

func (r *artworkStore) Create(ctx context.Context, a *catalog.Artwork, primary *catalog.ArtworkImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, exists := r.artworks[a.ID]; exists {
		return repository.ErrDuplicate
	}
	if _, ok := r.categories[a.CategoryID]; !ok {
		return repository.ErrNotFound
	}
	if a.Status == "" {
		a.Status = catalog.StatusAvailable
	}
	ts := (*Store)(r).stamp()
	a.CreatedAt, a.UpdatedAt = ts, ts

	stored := *a
	stored.Images = nil
	stored.CategoryName, stored.CategoryColor, stored.ImageURL = "", "", ""
	r.artworks[a.ID] = &stored

	a.Images = []catalog.ArtworkImage{}
	if primary != nil {
		primary.ArtworkID = a.ID
		primary.IsPrimary = true
		(*Store)(r).putImage(primary)
		a.Images = []catalog.ArtworkImage{*primary}
	}
	return nil
}

// putImage stores a copy of img. Callers hold mu.
func (s *Store) putImage(img *catalog.ArtworkImage) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = s.stamp()
	cp := *img
	s.images[img.ID] = &cp
}

func (r *artworkStore) Update(ctx context.Context, id string, ch repository.ArtworkChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.artworks[id]
	if !ok {
		return repository.ErrNotFound
	}
	a := *cur
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
		if !ch.OriginalPrice.Null {
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
		if !ch.Year.Null {
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
		if _, ok := r.categories[ch.CategoryID.Value]; !ok {
			return repository.ErrNotFound
		}
		a.CategoryID = ch.CategoryID.Value
	}
	a.UpdatedAt = (*Store)(r).stamp()
	r.artworks[id] = &a
	return nil
}

func (r *artworkStore) UpdateStatus(ctx context.Context, id string, to catalog.ArtworkStatus, from ...catalog.ArtworkStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[id]
	if !ok || !a.IsActive {
		return false, nil
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if a.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}
	a.Status = to
	a.UpdatedAt = (*Store)(r).stamp()
	return true, nil
}

func (r *artworkStore) Delete(ctx context.Context, id string) ([]catalog.ArtworkImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[id]
	if !ok || !a.IsActive {
		return nil, repository.ErrNotFound
	}
	removed := (*Store)(r).imagesOf(id)
	for _, img := range removed {
		delete(r.images, img.ID)
	}
	delete(r.artworks, id)
	return removed, nil
}

func (r *artworkStore) primaryOf(artworkID string) *catalog.ArtworkImage {
	for _, img := range r.images {
		if img.ArtworkID == artworkID && img.IsPrimary {
			return img
		}
	}
	return nil
}

func (r *artworkStore) ReplacePrimaryImage(ctx context.Context, artworkID string, img *catalog.ArtworkImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.artworks[artworkID]; !ok {
		return repository.ErrNotFound
	}
	img.ArtworkID = artworkID
	img.IsPrimary = true
	if cur := r.primaryOf(artworkID); cur != nil {
		img.ID = cur.ID
		img.CreatedAt = cur.CreatedAt
		cp := *img
		r.images[cur.ID] = &cp
		return nil
	}
	(*Store)(r).putImage(img)
	return nil
}

func (r *artworkStore) RemovePrimaryImage(ctx context.Context, artworkID string) ([]catalog.ArtworkImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]catalog.ArtworkImage, 0, 1)
	if cur := r.primaryOf(artworkID); cur != nil {
		removed = append(removed, *cur)
		delete(r.images, cur.ID)
	}
	return removed, nil
}

func (r *artworkStore) AddImage(ctx context.Context, img *catalog.ArtworkImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[img.ArtworkID]
	if !ok || !a.IsActive {
		return repository.ErrNotFound
	}
	if img.IsPrimary {
		if cur := r.primaryOf(img.ArtworkID); cur != nil {
			cur.IsPrimary = false
		}
	} else {
		img.IsPrimary = len((*Store)(r).imagesOf(img.ArtworkID)) == 0
	}
	(*Store)(r).putImage(img)
	return nil
}

func (r *artworkStore) SetPrimaryImage(ctx context.Context, artworkID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, ok := r.images[imageID]
	if !ok || img.ArtworkID != artworkID {
		return repository.ErrNotFound
	}
	if cur := r.primaryOf(artworkID); cur != nil {
		cur.IsPrimary = false
	}
	img.IsPrimary = true
	return nil
}

func (r *artworkStore) DeleteImage(ctx context.Context, artworkID, imageID string) (*catalog.ArtworkImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, ok := r.images[imageID]
	if !ok || img.ArtworkID != artworkID {
		return nil, repository.ErrNotFound
	}
	removed := *img
	delete(r.images, imageID)

	if removed.IsPrimary {
		var oldest *catalog.ArtworkImage
		for _, other := range r.images {
			if other.ArtworkID == artworkID && (oldest == nil || other.CreatedAt.Before(oldest.CreatedAt)) {
				oldest = other
			}
		}
		if oldest != nil {
			oldest.IsPrimary = true
		}
	}
	return &removed, nil
}

func (r *artworkStore) ListActiveRefs(ctx context.Context) ([]catalog.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Artwork, 0, len(r.artworks))
	for _, a := range r.artworks {
		if a.IsActive {
			out = append(out, catalog.Artwork{ID: a.ID, UpdatedAt: a.UpdatedAt, CreatedAt: a.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
