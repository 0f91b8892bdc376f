// Package storage writes uploaded images to local disk in two phases: a
// file is staged first and only moved under the public directory once the
// caller has recorded it.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxFileSize = 10 << 20
	MaxFiles    = 5

	PublicPrefix = "/uploads/"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrInvalidFileType = errors.New("only jpg, jpeg, png, gif and webp images are allowed")
	ErrInvalidName     = errors.New("invalid file name")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Staged is a validated file waiting for Commit or Discard.
type Staged struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	URL          string

	path string
}

type Local struct {
	dir     string
	staging string
}

// NewLocal creates dir and its sibling staging directory.
func NewLocal(dir string) (*Local, error) {
	dir = filepath.Clean(dir)
	l := &Local{dir: dir, staging: dir + "-staging"}
	for _, d := range []string{l.dir, l.staging} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return l, nil
}

func (l *Local) Dir() string { return l.dir }

// Stage validates fh by extension, size and sniffed content and copies it
// into the staging directory under a random name.
func (l *Local) Stage(fh *multipart.FileHeader) (*Staged, error) {
	if fh.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return nil, ErrInvalidFileType
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect type: %w", err)
	}
	if !allowedMIME[mt.String()] {
		return nil, ErrInvalidFileType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(l.staging, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &Staged{
		Filename:     name,
		OriginalName: filepath.Base(fh.Filename),
		MimeType:     mt.String(),
		Size:         n,
		URL:          PublicPrefix + name,
		path:         path,
	}, nil
}

// Commit moves s into the public directory.
func (l *Local) Commit(s *Staged) error {
	if err := os.Rename(s.path, filepath.Join(l.dir, s.Filename)); err != nil {
		return fmt.Errorf("publish %s: %w", s.Filename, err)
	}
	return nil
}

// Discard drops a staged file. Safe to call after Commit.
func (l *Local) Discard(s *Staged) {
	if s == nil {
		return
	}
	_ = os.Remove(s.path)
}

// Remove deletes a published file. Missing files are not an error.
func (l *Local) Remove(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(l.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FilenameFromURL returns the stored name for a /uploads/ URL, or "" when
// the URL points elsewhere.
func FilenameFromURL(url string) string {
	if !strings.HasPrefix(url, PublicPrefix) {
		return ""
	}
	name := strings.TrimPrefix(url, PublicPrefix)
	if name == "" || name != filepath.Base(name) {
		return ""
	}
	return name
}
