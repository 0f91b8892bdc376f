package gormrepo

import (
	"context"
	"strings"

	"gallery-api/database"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/repository"

	"gorm.io/gorm"
)

type artworkRepository struct {
	db *database.DB
}

func NewArtworkRepository(db *database.DB) repository.ArtworkRepository {
	return &artworkRepository{db: db}
}

const artworkWithCategory = "artworks.*, categories.name AS category_name, categories.color AS category_color"

var artworkOrder = map[string]string{
	repository.SortDefault:   "artworks.created_at ASC, artworks.id ASC",
	repository.SortNewest:    "artworks.created_at DESC, artworks.id DESC",
	repository.SortOldest:    "artworks.created_at ASC, artworks.id ASC",
	repository.SortPriceLow:  "artworks.price ASC, artworks.id ASC",
	repository.SortPriceHigh: "artworks.price DESC, artworks.id ASC",
	repository.SortPopular:   "artworks.view_count DESC, artworks.id ASC",
}

func imagesPrimaryFirst(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC, created_at ASC")
}

// escapeLike keeps user input from acting as LIKE wildcards.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func filtered(g *gorm.DB, f repository.ArtworkFilter) *gorm.DB {
	q := g.Model(&catalog.Artwork{}).Where("artworks.is_active = ?", true)
	if f.CategoryID != "" {
		q = q.Where("artworks.category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("artworks.status = ?", f.Status)
	}
	if f.Featured != nil {
		q = q.Where("artworks.is_featured = ?", *f.Featured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(
			"(LOWER(artworks.name) LIKE ? OR LOWER(artworks.description) LIKE ? OR LOWER(artworks.medium) LIKE ?)",
			like, like, like,
		)
	}
	return q
}

func (r *artworkRepository) List(ctx context.Context, f repository.ArtworkFilter) ([]catalog.Artwork, int64, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var total int64
	if err := filtered(g, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := artworkOrder[f.Sort]
	if !ok {
		order = artworkOrder[repository.SortDefault]
	}

	out := make([]catalog.Artwork, 0)
	if f.Offset >= int(total) {
		return out, total, nil
	}
	err := filtered(g, f).
		Select(artworkWithCategory).
		Joins("LEFT JOIN categories ON categories.id = artworks.category_id").
		Preload("Images", imagesPrimaryFirst).
		Order(order).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *artworkRepository) FindActive(ctx context.Context, id string) (*catalog.Artwork, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var a catalog.Artwork
	err := g.Model(&catalog.Artwork{}).
		Select(artworkWithCategory).
		Joins("LEFT JOIN categories ON categories.id = artworks.category_id").
		Preload("Images", imagesPrimaryFirst).
		Where("artworks.id = ? AND artworks.is_active = ?", id, true).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *artworkRepository) IncrementViews(ctx context.Context, id string) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	// UpdateColumn: a view is not an edit, updated_at stays put
	res := g.Model(&catalog.Artwork{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *artworkRepository) Create(ctx context.Context, a *catalog.Artwork, primary *catalog.ArtworkImage) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Create(a).Error; err != nil {
			return translate(err)
		}
		if primary == nil {
			return nil
		}
		primary.ArtworkID = a.ID
		primary.IsPrimary = true
		if err := tx.Create(primary).Error; err != nil {
			return translate(err)
		}
		a.Images = []catalog.ArtworkImage{*primary}
		return nil
	})
}

func (r *artworkRepository) Update(ctx context.Context, id string, ch repository.ArtworkChanges) error {
	cols := map[string]any{}
	if ch.Name.Set {
		cols["name"] = ch.Name.Value
	}
	if ch.Description.Set {
		cols["description"] = ch.Description.Value
	}
	if ch.Price.Set {
		cols["price"] = ch.Price.Value
	}
	if ch.OriginalPrice.Set {
		cols["original_price"] = nullable(ch.OriginalPrice)
	}
	if ch.Medium.Set {
		cols["medium"] = ch.Medium.Value
	}
	if ch.Dimensions.Set {
		cols["dimensions"] = ch.Dimensions.Value
	}
	if ch.Year.Set {
		cols["year"] = nullable(ch.Year)
	}
	if ch.Status.Set {
		cols["status"] = ch.Status.Value
	}
	if ch.IsActive.Set {
		cols["is_active"] = ch.IsActive.Value
	}
	if ch.IsFeatured.Set {
		cols["is_featured"] = ch.IsFeatured.Value
	}
	if ch.CategoryID.Set {
		cols["category_id"] = ch.CategoryID.Value
	}
	if len(cols) == 0 {
		return nil
	}

	g, cancel := r.db.Gorm(ctx)
	defer cancel()
	res := g.Model(&catalog.Artwork{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *artworkRepository) UpdateStatus(ctx context.Context, id string, to catalog.ArtworkStatus, from ...catalog.ArtworkStatus) (bool, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	q := g.Model(&catalog.Artwork{}).Where("id = ? AND is_active = ?", id, true)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *artworkRepository) Delete(ctx context.Context, id string) ([]catalog.ArtworkImage, error) {
	var removed []catalog.ArtworkImage
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var a catalog.Artwork
		if err := tx.Select("id").Where("id = ? AND is_active = ?", id, true).Take(&a).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("artwork_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("artwork_id = ?", id).Delete(&catalog.ArtworkImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&catalog.Artwork{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *artworkRepository) ReplacePrimaryImage(ctx context.Context, artworkID string, img *catalog.ArtworkImage) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var existing catalog.ArtworkImage
		err := tx.Where("artwork_id = ? AND is_primary = ?", artworkID, true).Take(&existing).Error
		switch {
		case err == nil:
			err = tx.Model(&existing).Updates(map[string]any{
				"url":           img.URL,
				"filename":      img.Filename,
				"original_name": img.OriginalName,
				"mime_type":     img.MimeType,
				"size":          img.Size,
			}).Error
			if err != nil {
				return err
			}
			img.ID = existing.ID
			img.ArtworkID = artworkID
			img.IsPrimary = true
			return nil
		case translate(err) == repository.ErrNotFound:
			img.ArtworkID = artworkID
			img.IsPrimary = true
			return translate(tx.Create(img).Error)
		default:
			return err
		}
	})
}

func (r *artworkRepository) RemovePrimaryImage(ctx context.Context, artworkID string) ([]catalog.ArtworkImage, error) {
	var removed []catalog.ArtworkImage
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ? AND is_primary = ?", artworkID, true).Find(&removed).Error; err != nil {
			return err
		}
		return tx.Where("artwork_id = ? AND is_primary = ?", artworkID, true).Delete(&catalog.ArtworkImage{}).Error
	})
	return removed, err
}

func (r *artworkRepository) AddImage(ctx context.Context, img *catalog.ArtworkImage) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var a catalog.Artwork
		if err := tx.Select("id").Where("id = ? AND is_active = ?", img.ArtworkID, true).Take(&a).Error; err != nil {
			return translate(err)
		}

		if img.IsPrimary {
			if err := clearPrimary(tx, img.ArtworkID); err != nil {
				return err
			}
		} else {
			var n int64
			if err := tx.Model(&catalog.ArtworkImage{}).Where("artwork_id = ?", img.ArtworkID).Count(&n).Error; err != nil {
				return err
			}
			img.IsPrimary = n == 0
		}
		return translate(tx.Create(img).Error)
	})
}

func (r *artworkRepository) SetPrimaryImage(ctx context.Context, artworkID, imageID string) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var img catalog.ArtworkImage
		if err := tx.Where("id = ? AND artwork_id = ?", imageID, artworkID).Take(&img).Error; err != nil {
			return translate(err)
		}
		// unset first: the partial unique index allows one primary per artwork
		if err := clearPrimary(tx, artworkID); err != nil {
			return err
		}
		return tx.Model(&catalog.ArtworkImage{}).Where("id = ?", imageID).Update("is_primary", true).Error
	})
}

func (r *artworkRepository) DeleteImage(ctx context.Context, artworkID, imageID string) (*catalog.ArtworkImage, error) {
	var img catalog.ArtworkImage
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND artwork_id = ?", imageID, artworkID).Take(&img).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&catalog.ArtworkImage{}, "id = ?", imageID).Error; err != nil {
			return err
		}
		if !img.IsPrimary {
			return nil
		}
		var next catalog.ArtworkImage
		err := tx.Where("artwork_id = ?", artworkID).Order("created_at ASC").Take(&next).Error
		if translate(err) == repository.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func clearPrimary(tx *gorm.DB, artworkID string) error {
	return tx.Model(&catalog.ArtworkImage{}).
		Where("artwork_id = ? AND is_primary = ?", artworkID, true).
		Update("is_primary", false).Error
}

func (r *artworkRepository) ListActiveRefs(ctx context.Context) ([]catalog.Artwork, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	out := make([]catalog.Artwork, 0)
	err := g.Select("id", "updated_at").Where("is_active = ?", true).Order("created_at ASC").Find(&out).Error
	return out, err
}
