package gormrepo

import (
	"context"
	"strings"
	"time"

	"gallery-api/database"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) find(ctx context.Context, where string, arg any) (*users.User, error) {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	var u users.User
	if err := g.Where(where, arg).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*users.User, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.find(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return r.find(ctx, "google_sub = ?", sub)
}

func (r *userRepository) Create(ctx context.Context, u *users.User) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()
	return translate(g.Create(u).Error)
}

func (r *userRepository) update(ctx context.Context, id string, cols map[string]any) error {
	g, cancel := r.db.Gorm(ctx)
	defer cancel()

	res := g.Model(&users.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) LinkGoogle(ctx context.Context, id, sub string) error {
	return r.update(ctx, id, map[string]any{"google_sub": sub, "is_email_verified": true})
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{"last_login": at})
}

func (r *userRepository) SetResetToken(ctx context.Context, id string, token *string) error {
	return r.update(ctx, id, map[string]any{"reset_token": token})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash, "reset_token": nil})
}
