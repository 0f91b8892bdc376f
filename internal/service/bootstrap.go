package service

import (
	"context"
	"fmt"

	"gallery-api/internal/auth"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/logging"
	"gallery-api/internal/repository"
)

type AdminDefaults struct {
	Username string
	Email    string
	Password string
}

// EnsureAdmin creates the default admin when no admin exists yet. It is a
// no-op on every later start.
func EnsureAdmin(ctx context.Context, admins repository.AdminRepository, d AdminDefaults) (created bool, err error) {
	n, err := admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(d.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	username := d.Username
	if username == "" {
		username = "admin"
	}
	admin := &users.AdminUser{
		Username:     username,
		Email:        normalizeEmail(d.Email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := admins.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	logging.Warn().Str("email", admin.Email).Msg("created default admin account, change its password")
	return true, nil
}
