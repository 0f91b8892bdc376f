package memory

import (
	"context"
	"sort"
	"strings"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/repository"

	"github.com/google/uuid"
)

type categoryStore Store

func (c *categoryStore) activeArtworkCount(id string) int64 {
	var n int64
	for _, a := range c.artworks {
		if a.CategoryID == id && a.IsActive {
			n++
		}
	}
	return n
}

func (c *categoryStore) ListActive(ctx context.Context) ([]catalog.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]catalog.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		if !cat.IsActive {
			continue
		}
		cp := *cat
		cp.ArtworkCount = c.activeArtworkCount(cat.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (c *categoryStore) FindActive(ctx context.Context, id string) (*catalog.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cat, ok := c.categories[id]
	if !ok || !cat.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := *cat
	return &cp, nil
}

func (c *categoryStore) FindActiveWithArtworks(ctx context.Context, id string) (*catalog.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cat, ok := c.categories[id]
	if !ok || !cat.IsActive {
		return nil, repository.ErrNotFound
	}
	cp := *cat
	cp.Artworks = make([]catalog.Artwork, 0)
	for _, a := range c.artworks {
		if a.CategoryID == id && a.IsActive {
			cp.Artworks = append(cp.Artworks, (*Store)(c).artworkCopy(a, false))
		}
	}
	sort.Slice(cp.Artworks, func(i, j int) bool {
		return cp.Artworks[i].CreatedAt.After(cp.Artworks[j].CreatedAt)
	})
	cp.ArtworkCount = int64(len(cp.Artworks))
	return &cp, nil
}

func (c *categoryStore) ActiveNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, cat := range c.categories {
		if cat.IsActive && cat.ID != excludeID && strings.EqualFold(cat.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (c *categoryStore) NextSortOrder(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	highest := 0
	for _, cat := range c.categories {
		if cat.IsActive && cat.SortOrder > highest {
			highest = cat.SortOrder
		}
	}
	return highest + 1, nil
}

func (c *categoryStore) CountActiveArtworks(ctx context.Context, id string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeArtworkCount(id), nil
}

func (c *categoryStore) Create(ctx context.Context, cat *catalog.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if _, exists := c.categories[cat.ID]; exists {
		return repository.ErrDuplicate
	}
	if cat.IsActive {
		for _, other := range c.categories {
			if other.IsActive && strings.EqualFold(other.Name, cat.Name) {
				return repository.ErrDuplicate
			}
		}
	}
	ts := (*Store)(c).stamp()
	cat.CreatedAt, cat.UpdatedAt = ts, ts
	cp := *cat
	cp.Artworks = nil
	cp.ArtworkCount = 0
	c.categories[cat.ID] = &cp
	return nil
}

func (c *categoryStore) Update(ctx context.Context, id string, ch repository.CategoryChanges) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cat, ok := c.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	if ch.Empty() {
		return nil
	}
	next := *cat
	if ch.Name.Set {
		next.Name = ch.Name.Value
	}
	if ch.Description.Set {
		next.Description = ch.Description.Value
	}
	if ch.Color.Set {
		next.Color = ch.Color.Value
	}
	if ch.IsActive.Set {
		next.IsActive = ch.IsActive.Value
	}
	if ch.SortOrder.Set {
		next.SortOrder = ch.SortOrder.Value
	}
	if next.IsActive {
		for _, other := range c.categories {
			if other.ID != id && other.IsActive && strings.EqualFold(other.Name, next.Name) {
				return repository.ErrDuplicate
			}
		}
	}
	next.UpdatedAt = (*Store)(c).stamp()
	c.categories[id] = &next
	return nil
}

func (c *categoryStore) Deactivate(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cat, ok := c.categories[id]
	if !ok || !cat.IsActive {
		return repository.ErrNotFound
	}
	next := *cat
	next.IsActive = false
	next.UpdatedAt = (*Store)(c).stamp()
	c.categories[id] = &next
	return nil
}
