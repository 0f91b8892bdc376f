package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// prices go out as JSON numbers (100.5), not strings ("100.5")
	decimal.MarshalJSONWithoutQuotes = true
}

type Artwork struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Name          string           `gorm:"type:varchar(200);not null" json:"name"`
	Description   string           `gorm:"type:text;not null;default:''" json:"description"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"originalPrice"`
	Medium        string           `gorm:"type:varchar(120);not null;default:''" json:"medium"`
	Dimensions    string           `gorm:"type:varchar(120);not null;default:''" json:"dimensions"`
	Year          *int             `json:"year"`

	Status     ArtworkStatus `gorm:"type:varchar(16);not null;default:'AVAILABLE';index" json:"status"`
	IsActive   bool          `gorm:"not null;default:true;index" json:"isActive"`
	IsFeatured bool          `gorm:"not null;default:false;index" json:"isFeatured"`
	ViewCount  int64         `gorm:"not null;default:0" json:"viewCount"`

	CategoryID    string `gorm:"type:uuid;not null;index" json:"categoryId"`
	CategoryName  string `gorm:"->;-:migration" json:"categoryName,omitempty"`
	CategoryColor string `gorm:"->;-:migration" json:"categoryColor,omitempty"`

	Images   []ArtworkImage `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE;" json:"images"`
	ImageURL string         `gorm:"-" json:"imageUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Artwork) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// PrimaryImage returns the image flagged primary, falling back to the first one.
func (a *Artwork) PrimaryImage() *ArtworkImage {
	for i := range a.Images {
		if a.Images[i].IsPrimary {
			return &a.Images[i]
		}
	}
	if len(a.Images) > 0 {
		return &a.Images[0]
	}
	return nil
}
