package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArtworkImage struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	ArtworkID    string `gorm:"type:uuid;not null;index" json:"artworkId"`
	Filename     string `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalName string `gorm:"type:varchar(255);not null;default:''" json:"originalName"`
	MimeType     string `gorm:"type:varchar(100);not null;default:''" json:"mimeType"`
	Size         int64  `gorm:"not null;default:0" json:"size"`
	URL          string `gorm:"type:text;not null" json:"url"`
	IsPrimary    bool   `gorm:"not null;default:false" json:"isPrimary"`

	CreatedAt time.Time `json:"createdAt"`
}

func (i *ArtworkImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
