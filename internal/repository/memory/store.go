// Package memory keeps the whole catalogue in process memory. It backs
// DATA_SOURCE=memory and the handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"
)

// Store is safe for concurrent use. Every read hands out copies.
type Store struct {
	mu sync.RWMutex

	categories map[string]*catalog.Category
	artworks   map[string]*catalog.Artwork
	images     map[string]*catalog.ArtworkImage
	users      map[string]*users.User
	admins     map[string]*users.AdminUser

	now  func() time.Time
	last time.Time
}

func NewStore() *Store {
	return &Store{
		categories: map[string]*catalog.Category{},
		artworks:   map[string]*catalog.Artwork{},
		images:     map[string]*catalog.ArtworkImage{},
		users:      map[string]*users.User{},
		admins:     map[string]*users.AdminUser{},
		now:        time.Now,
	}
}

// stamp returns a strictly increasing time so creation order is stable
// even when two rows land in the same clock tick. Callers hold mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) Categories() repository.CategoryRepository { return (*categoryStore)(s) }
func (s *Store) Artworks() repository.ArtworkRepository    { return (*artworkStore)(s) }
func (s *Store) Users() repository.UserRepository          { return (*userStore)(s) }
func (s *Store) Admins() repository.AdminRepository        { return (*adminStore)(s) }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
