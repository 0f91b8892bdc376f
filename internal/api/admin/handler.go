// Package admin serves the back-office account endpoints under /api/admin.
package admin

import (
	"gallery-api/internal/api/request"
	"gallery-api/internal/api/response"
	"gallery-api/internal/app/http/middleware"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type Handler struct {
	auth *service.AuthService
}

func NewHandler(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

// POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !request.JSON(c, &req) {
		return
	}
	admin, tokens, err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Login successful", gin.H{"admin": admin, "tokens": tokens})
}

// POST /api/admin/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !request.JSON(c, &req) {
		return
	}
	tokens, err := h.auth.AdminRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Token refreshed", gin.H{"tokens": tokens})
}

// GET /api/admin/me
func (h *Handler) Me(c *gin.Context) {
	admin, err := h.auth.Admin(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile retrieved", gin.H{"admin": admin})
}
