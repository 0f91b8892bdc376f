package gormrepo

import (
	"context"
	"strings"
	"time"

	"gallery-api/database"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"
)

type adminRepository struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var n int64
	err := g.Model(&users.AdminUser{}).Count(&n).Error
	return n, err
}

func (r *adminRepository) FindByID(ctx context.Context, id string) (*users.AdminUser, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var a users.AdminUser
	if err := g.Where("id = ?", id).Take(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*users.AdminUser, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var a users.AdminUser
	if err := g.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *adminRepository) Create(ctx context.Context, a *users.AdminUser) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()
	return translate(g.Create(a).Error)
}

func (r *adminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	res := g.Model(&users.AdminUser{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
