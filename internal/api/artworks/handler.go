// Package artworks serves /api/artworks and the artwork image endpoints.
package artworks

import (
	"gallery-api/internal/api/request"
	"gallery-api/internal/api/response"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.ArtworkService
}

func NewHandler(svc *service.ArtworkService) *Handler {
	return &Handler{svc: svc}
}

// GET /api/artworks
func (h *Handler) List(c *gin.Context) {
	q, err := parseListQuery(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Artworks retrieved", page)
}

// GET /api/artworks/:id
func (h *Handler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Artwork retrieved", gin.H{"artwork": a})
}

// POST /api/artworks
func (h *Handler) Create(c *gin.Context) {
	var req CreateArtworkRequest
	if !request.JSON(c, &req) {
		return
	}
	a, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Artwork created", gin.H{"artwork": a})
}

// PUT /api/artworks/:id
func (h *Handler) Update(c *gin.Context) {
	var req UpdateArtworkRequest
	if !request.JSON(c, &req) {
		return
	}
	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Artwork updated", gin.H{"artwork": a})
}

// DELETE /api/artworks/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Artwork deleted", gin.H{"id": id})
}

// PUT /api/artworks/:id/images/:imageId/primary
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	a, err := h.svc.SetPrimaryImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Primary image updated", gin.H{"artwork": a})
}

// DELETE /api/artworks/:id/images/:imageId
func (h *Handler) DeleteImage(c *gin.Context) {
	a, err := h.svc.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Image deleted", gin.H{"artwork": a})
}
