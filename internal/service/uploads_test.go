package service

import (
	"net/http"
	"path/filepath"
	"testing"

	"gallery-api/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadWithoutArtwork(t *testing.T) {
	f := newFixture(t)

	out, err := f.uploads.Upload(ctxb(), fileHeaders(t, upload{"Sunset.png", pngBytes}), "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ID)
	assert.Equal(t, "Sunset.png", out[0].OriginalName)
	assert.Equal(t, "image/png", out[0].MimeType)
	assert.Equal(t, "/uploads/"+out[0].Filename, out[0].URL)
	assert.FileExists(t, filepath.Join(f.files.Dir(), out[0].Filename))
}

func TestUploadRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "x", CategoryID: c.ID})

	_, err := f.uploads.Upload(ctxb(), fileHeaders(t,
		upload{"good.png", pngBytes},
		upload{"notes.txt", []byte("hello")},
	), a.ID)
	assert.Equal(t, apperr.CodeInvalidFileType, code(t, err))

	assert.Equal(t, 0, dirEntries(t, f.files.Dir()))
	assert.Equal(t, 0, dirEntries(t, f.files.Dir()+"-staging"))
	got, err := f.artworks.Get(ctxb(), a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestUploadLimits(t *testing.T) {
	f := newFixture(t)

	_, err := f.uploads.Upload(ctxb(), nil, "")
	assert.Equal(t, apperr.CodeNoFile, code(t, err))

	many := make([]upload, 6)
	for i := range many {
		many[i] = upload{"a.png", pngBytes}
	}
	_, err = f.uploads.Upload(ctxb(), fileHeaders(t, many...), "")
	assert.Equal(t, apperr.CodeTooManyFiles, code(t, err))

	big := append(append([]byte{}, pngBytes...), make([]byte, 10<<20)...)
	_, err = f.uploads.Upload(ctxb(), fileHeaders(t, upload{"big.png", big}), "")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ae.Status)
	assert.Equal(t, apperr.CodeFileTooLarge, ae.Code)
	assert.Equal(t, 0, dirEntries(t, f.files.Dir()))
}

func TestUploadToUnknownArtwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.uploads.Upload(ctxb(), fileHeaders(t, upload{"a.png", pngBytes}), "4f1c1a8e-0000-4000-8000-000000000000")
	assert.Equal(t, apperr.CodeArtworkNotFound, code(t, err))
	_, err = f.uploads.Upload(ctxb(), fileHeaders(t, upload{"a.png", pngBytes}), "bad")
	assert.Equal(t, apperr.CodeInvalidID, code(t, err))
	assert.Equal(t, 0, dirEntries(t, f.files.Dir()))
}

func TestUploadKeepsExistingPrimary(t *testing.T) {
	f := newFixture(t)
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "x", CategoryID: c.ID, ImageURL: "https://cdn.example.com/a.jpg"})

	out, err := f.uploads.Upload(ctxb(), fileHeaders(t, upload{"b.png", pngBytes}), a.ID)
	require.NoError(t, err)
	assert.False(t, out[0].IsPrimary)

	got, err := f.artworks.Get(ctxb(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got.ImageURL)
	assert.Len(t, got.Images, 2)
}
