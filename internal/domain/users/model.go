package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is a storefront customer.
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string     `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Phone        *string    `gorm:"type:varchar(40)" json:"phone,omitempty"`
	PasswordHash *string    `json:"-"`
	DateOfBirth  *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`

	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"authProvider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`

	IsActive        bool       `gorm:"not null;default:true" json:"isActive"`
	IsEmailVerified bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`

	ResetToken *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// AdminUser is a back-office account. One is bootstrapped on first start.
type AdminUser struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(100);not null" json:"username"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_admins_email" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AdminUser) TableName() string { return "admins" }

func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
