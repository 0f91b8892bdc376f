package gormrepo

import (
	"context"

	"gallery-api/database"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/repository"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

const listActiveCategoriesSQL = `
SELECT c.*, COUNT(a.id) AS artwork_count
FROM categories c
LEFT JOIN artworks a ON a.category_id = c.id AND a.is_active = TRUE
WHERE c.is_active = TRUE
GROUP BY c.id
ORDER BY c.sort_order ASC, c.name ASC`

func (r *categoryRepository) ListActive(ctx context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0)
	if err := r.db.Query(ctx, &out, listActiveCategoriesSQL); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepository) FindActive(ctx context.Context, id string) (*catalog.Category, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var c catalog.Category
	if err := g.Where("id = ? AND is_active = ?", id, true).Take(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) FindActiveWithArtworks(ctx context.Context, id string) (*catalog.Category, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var c catalog.Category
	err := g.
		Preload("Artworks", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at DESC")
		}).
		Preload("Artworks.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		Where("id = ? AND is_active = ?", id, true).
		Take(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	c.ArtworkCount = int64(len(c.Artworks))
	return &c, nil
}

func (r *categoryRepository) ActiveNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	q := g.Model(&catalog.Category{}).Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *categoryRepository) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.Query(ctx, &next, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories WHERE is_active = TRUE`)
	return next, err
}

func (r *categoryRepository) CountActiveArtworks(ctx context.Context, id string) (int64, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var n int64
	err := g.Model(&catalog.Artwork{}).Where("category_id = ? AND is_active = ?", id, true).Count(&n).Error
	return n, err
}

func (r *categoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()
	return translate(g.Create(c).Error)
}

func (r *categoryRepository) Update(ctx context.Context, id string, ch repository.CategoryChanges) error {
	cols := map[string]any{}
	if ch.Name.Set {
		cols["name"] = ch.Name.Value
	}
	if ch.Description.Set {
		cols["description"] = ch.Description.Value
	}
	if ch.Color.Set {
		cols["color"] = ch.Color.Value
	}
	if ch.IsActive.Set {
		cols["is_active"] = ch.IsActive.Value
	}
	if ch.SortOrder.Set {
		cols["sort_order"] = ch.SortOrder.Value
	}
	if len(cols) == 0 {
		return nil
	}

	g, cancel := r.db.Gorm(ctx)
	defer cancel()
	res := g.Model(&catalog.Category{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) Deactivate(ctx context.Context, id string) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	res := g.Model(&catalog.Category{}).Where("id = ? AND is_active = ?", id, true).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
