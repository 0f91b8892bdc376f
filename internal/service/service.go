// Package service holds the gallery's business rules. Handlers decode and
// encode; services validate, talk to the repositories, and keep the
// resource cache honest.
package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"

	"gallery-api/internal/apperr"
	"gallery-api/internal/cache"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/logging"
	"gallery-api/internal/repository"
	"gallery-api/internal/storage"

	"github.com/google/uuid"
)

// Files is the slice of storage.Local the services use.
type Files interface {
	Stage(fh *multipart.FileHeader) (*storage.Staged, error)
	Commit(s *storage.Staged) error
	Discard(s *storage.Staged)
	Remove(filename string) error
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

// wrap annotates unexpected repository errors; typed errors pass through.
func wrap(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func invalidateAll(ctx context.Context, c *cache.ResourceCache) {
	c.Invalidate(ctx, cache.Artworks, cache.Categories)
}

// removeFiles deletes stored files for images that no longer exist. A
// failure leaves an orphan on disk and is only logged.
func removeFiles(ctx context.Context, files Files, images []catalog.ArtworkImage) {
	for _, img := range images {
		// external URLs were never stored here
		name := storage.FilenameFromURL(img.URL)
		if name == "" {
			continue
		}
		if err := files.Remove(name); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("file", name).Msg("could not remove image file")
		}
	}
}

func trimmed(s string) string { return strings.TrimSpace(s) }
