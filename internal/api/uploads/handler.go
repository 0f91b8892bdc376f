// Package uploads serves /api/upload/image and /api/upload/images.
package uploads

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"
	"gallery-api/internal/service"
	"gallery-api/internal/storage"

	"github.com/gin-gonic/gin"
)

// room for MaxFiles full-size images plus form overhead
const maxBody = storage.MaxFiles*storage.MaxFileSize + 1<<20

type Handler struct {
	svc *service.UploadService
}

func NewHandler(svc *service.UploadService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) form(c *gin.Context) (*multipart.Form, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	form, err := c.MultipartForm()
	if err == nil {
		return form, true
	}
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		response.Error(c, apperr.PayloadTooLarge("Upload exceeds the request size limit"))
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		response.Error(c, apperr.BadRequest(apperr.CodeNoFile, "Expected a multipart/form-data body"))
	default:
		response.Error(c, apperr.Validation(fmt.Sprintf("Could not read upload: %v", err)))
	}
	return nil, false
}

func artworkID(form *multipart.Form) string {
	if v := form.Value["artworkId"]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// POST /api/upload/image (field "image")
func (h *Handler) Single(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	files := form.File["image"]
	if len(files) > 1 {
		response.Error(c, apperr.BadRequest(apperr.CodeTooManyFiles, "Send a single file in the image field"))
		return
	}
	out, err := h.svc.Upload(c.Request.Context(), files, artworkID(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Image uploaded", out[0])
}

// POST /api/upload/images (field "images", up to storage.MaxFiles)
func (h *Handler) Multiple(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	out, err := h.svc.Upload(c.Request.Context(), form.File["images"], artworkID(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("%d image(s) uploaded", len(out)), gin.H{"images": out})
}
