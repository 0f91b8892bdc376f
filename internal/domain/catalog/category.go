package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultCategoryColor = "#6B7280"

type Category struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Color       string `gorm:"type:varchar(7);not null;default:'#6B7280'" json:"color"`
	IsActive    bool   `gorm:"not null;default:true;index" json:"isActive"`
	SortOrder   int    `gorm:"not null;default:0;index" json:"sortOrder"`

	// filled by the listing query, never stored
	ArtworkCount int64 `gorm:"->;-:migration" json:"artworkCount"`

	Artworks []Artwork `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"artworks,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
