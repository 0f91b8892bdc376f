package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gallery-api/internal/apperr"
	"gallery-api/internal/cache"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/logging"
	"gallery-api/internal/metrics"
	"gallery-api/internal/repository"
	"gallery-api/internal/storage"
)

type UploadedImage struct {
	ID           string `json:"id,omitempty"`
	ArtworkID    string `json:"artworkId,omitempty"`
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	IsPrimary    bool   `json:"isPrimary"`
}

type UploadService struct {
	files    Files
	artworks repository.ArtworkRepository
	cache    *cache.ResourceCache
}

func NewUploadService(files Files, artworks repository.ArtworkRepository, c *cache.ResourceCache) *UploadService {
	return &UploadService{files: files, artworks: artworks, cache: c}
}

func uploadError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return apperr.PayloadTooLarge(fmt.Sprintf("%s exceeds the 10MB limit", name))
	case errors.Is(err, storage.ErrInvalidFileType):
		return apperr.BadRequest(apperr.CodeInvalidFileType,
			fmt.Sprintf("%s: only jpg, jpeg, png, gif and webp images are allowed", name))
	default:
		return fmt.Errorf("stage %s: %w", name, err)
	}
}

// Upload validates every file before any of them becomes public. With an
// artworkID the files are also recorded as images of that artwork; the
// first one becomes primary when the artwork has none. On any failure no
// file is left behind and no row survives.
func (s *UploadService) Upload(ctx context.Context, headers []*multipart.FileHeader, artworkID string) ([]UploadedImage, error) {
	if len(headers) == 0 {
		return nil, apperr.BadRequest(apperr.CodeNoFile, "No file uploaded")
	}
	if len(headers) > storage.MaxFiles {
		return nil, apperr.BadRequest(apperr.CodeTooManyFiles,
			fmt.Sprintf("At most %d files can be uploaded at once", storage.MaxFiles))
	}
	if artworkID != "" {
		if !validID(artworkID) {
			return nil, invalidArtworkID()
		}
		if _, err := s.artworks.FindActive(ctx, artworkID); err != nil {
			if isNotFound(err) {
				return nil, artworkNotFound()
			}
			return nil, wrap("find artwork", err)
		}
	}

	staged := make([]*storage.Staged, 0, len(headers))
	discard := func() {
		for _, st := range staged {
			s.files.Discard(st)
		}
	}
	for _, fh := range headers {
		st, err := s.files.Stage(fh)
		if err != nil {
			metrics.RecordUpload(false)
			discard()
			return nil, uploadError(fh.Filename, err)
		}
		staged = append(staged, st)
	}

	out := make([]UploadedImage, 0, len(staged))
	var rows []*catalog.ArtworkImage
	rollback := func() {
		for _, row := range rows {
			if _, err := s.artworks.DeleteImage(ctx, row.ArtworkID, row.ID); err != nil {
				logging.Ctx(ctx).Error().Err(err).Str("image_id", row.ID).Msg("could not roll back image row")
			}
		}
		discard()
	}

	if artworkID != "" {
		for _, st := range staged {
			row := &catalog.ArtworkImage{
				ArtworkID:    artworkID,
				Filename:     st.Filename,
				OriginalName: st.OriginalName,
				MimeType:     st.MimeType,
				Size:         st.Size,
				URL:          st.URL,
			}
			if err := s.artworks.AddImage(ctx, row); err != nil {
				rollback()
				if isNotFound(err) {
					return nil, artworkNotFound()
				}
				return nil, wrap("record image", err)
			}
			rows = append(rows, row)
		}
	}

	for i, st := range staged {
		if err := s.files.Commit(st); err != nil {
			for _, done := range staged[:i] {
				_ = s.files.Remove(done.Filename)
			}
			rollback()
			return nil, wrap("publish upload", err)
		}
	}

	for i, st := range staged {
		img := UploadedImage{
			URL:          st.URL,
			Filename:     st.Filename,
			OriginalName: st.OriginalName,
			MimeType:     st.MimeType,
			Size:         st.Size,
		}
		if i < len(rows) {
			img.ID = rows[i].ID
			img.ArtworkID = rows[i].ArtworkID
			img.IsPrimary = rows[i].IsPrimary
		}
		out = append(out, img)
		metrics.RecordUpload(true)
	}
	if artworkID != "" {
		s.cache.Invalidate(ctx, cache.Artworks)
	}
	return out, nil
}
