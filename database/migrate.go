package database

import (
	"context"
	"fmt"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/logging"
)

// Partial indexes gorm tags cannot express.
var indexStatements = []string{
	// name is unique among active categories only; deleted ones keep their name
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_active_name
		ON categories (lower(name)) WHERE is_active`,
	// at most one primary image per artwork
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_artwork_images_one_primary
		ON artwork_images (artwork_id) WHERE is_primary`,
	`CREATE INDEX IF NOT EXISTS idx_artworks_created_at ON artworks (created_at)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	// no query timeout: first-run migrations can be slow
	g := db.gorm.WithContext(ctx)

	if err := g.AutoMigrate(
		&catalog.Category{},
		&catalog.Artwork{},
		&catalog.ArtworkImage{},
		&users.User{},
		&users.AdminUser{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, stmt := range indexStatements {
		if err := g.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	logging.Info().Msg("database migrated")
	return nil
}
