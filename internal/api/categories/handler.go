// Package categories serves /api/categories.
package categories

import (
	"gallery-api/internal/api/request"
	"gallery-api/internal/api/response"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.CategoryService
}

func NewHandler(svc *service.CategoryService) *Handler {
	return &Handler{svc: svc}
}

// GET /api/categories
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved", gin.H{"categories": list, "total": len(list)})
}

// GET /api/categories/:id
func (h *Handler) Get(c *gin.Context) {
	cat, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category retrieved", gin.H{"category": cat})
}

// POST /api/categories
func (h *Handler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if !request.JSON(c, &req) {
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created", gin.H{"category": cat})
}

// PUT /api/categories/:id
func (h *Handler) Update(c *gin.Context) {
	var req UpdateCategoryRequest
	if !request.JSON(c, &req) {
		return
	}
	cat, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.changes())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category updated", gin.H{"category": cat})
}

// DELETE /api/categories/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category deleted", gin.H{"id": id})
}
