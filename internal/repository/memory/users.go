package memory

import (
	"context"
	"strings"
	"time"

	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"

	"github.com/google/uuid"
)

type userStore Store

func (r *userStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userStore) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.GoogleSub != nil && *u.GoogleSub == sub {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userStore) Create(ctx context.Context, u *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
		if u.GoogleSub != nil && other.GoogleSub != nil && *other.GoogleSub == *u.GoogleSub {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.AuthProvider == "" {
		u.AuthProvider = users.ProviderLocal
	}
	ts := (*Store)(r).stamp()
	u.CreatedAt, u.UpdatedAt = ts, ts
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *userStore) mutate(id string, fn func(u *users.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = (*Store)(r).stamp()
	return nil
}

func (r *userStore) LinkGoogle(ctx context.Context, id, sub string) error {
	return r.mutate(id, func(u *users.User) {
		u.GoogleSub = &sub
		u.IsEmailVerified = true
	})
}

func (r *userStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *users.User) { u.LastLogin = &at })
}

func (r *userStore) SetResetToken(ctx context.Context, id string, token *string) error {
	return r.mutate(id, func(u *users.User) { u.ResetToken = token })
}

func (r *userStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.mutate(id, func(u *users.User) {
		u.PasswordHash = &hash
		u.ResetToken = nil
	})
}

type adminStore Store

func (r *adminStore) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.admins)), nil
}

func (r *adminStore) FindByID(ctx context.Context, id string) (*users.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *adminStore) FindByEmail(ctx context.Context, email string) (*users.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *adminStore) Create(ctx context.Context, a *users.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.admins {
		if other.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	ts := (*Store)(r).stamp()
	a.CreatedAt, a.UpdatedAt = ts, ts
	cp := *a
	r.admins[a.ID] = &cp
	return nil
}

func (r *adminStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastLogin = &at
	return nil
}
