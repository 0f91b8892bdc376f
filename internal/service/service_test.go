package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gallery-api/internal/apperr"
	"gallery-api/internal/auth"
	"gallery-api/internal/cache"
	"gallery-api/internal/repository/memory"
	"gallery-api/internal/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	store      *memory.Store
	cache      *cache.ResourceCache
	files      *storage.Local
	tokens     *auth.TokenService
	categories *CategoryService
	artworks   *ArtworkService
	uploads    *UploadService
	auth       *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	rc := cache.NewResourceCache(cache.NewMemory(), 5*time.Minute, 2*time.Minute)
	files, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret: "test-secret", Issuer: "gallery-api", Audience: "gallery-web",
		AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour, ResetTTL: time.Hour,
	})
	return &fixture{
		store:      store,
		cache:      rc,
		files:      files,
		tokens:     tokens,
		categories: NewCategoryService(store.Categories(), rc),
		artworks:   NewArtworkService(store.Artworks(), store.Categories(), files, rc),
		uploads:    NewUploadService(files, store.Artworks(), rc),
		auth:       NewAuthService(store.Admins(), store.Users(), tokens),
	}
}

// code extracts the envelope code from a service error.
func code(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "expected *apperr.Error, got %T: %v", err, err)
	return ae.Code
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"), make([]byte, 64)...)

type upload struct {
	name    string
	content []byte
}

func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(list)
}

func ctxb() context.Context { return context.Background() }
