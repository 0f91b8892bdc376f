// Package auth serves storefront accounts: signup, login, profile, password
// reset and Google sign-in.
package auth

import (
	"strings"
	"time"

	"gallery-api/internal/api/request"
	"gallery-api/internal/api/response"
	"gallery-api/internal/app/http/middleware"
	"gallery-api/internal/apperr"
	appauth "gallery-api/internal/auth"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required"`
	FirstName   string  `json:"firstName" binding:"required,max=100"`
	LastName    string  `json:"lastName" binding:"required,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=40"`
	DateOfBirth string  `json:"dateOfBirth"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type CompleteResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const resetMessage = "If that email is registered, a reset link has been sent"

type Config struct {
	// ExposeResetToken returns reset tokens in the response body. Development only.
	ExposeResetToken bool
	// FrontendRedirect receives ?token= after Google sign-in. Empty answers with JSON.
	FrontendRedirect string
	SecureCookies    bool
}

type Handler struct {
	auth   *service.AuthService
	google *appauth.Google
	cfg    Config
}

// NewHandler builds the handler. google may be nil when sign-in with Google
// is not configured.
func NewHandler(auth *service.AuthService, google *appauth.Google, cfg Config) *Handler {
	return &Handler{auth: auth, google: google, cfg: cfg}
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !request.JSON(c, &req) {
		return
	}
	in := service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if dob := strings.TrimSpace(req.DateOfBirth); dob != "" {
		t, err := time.Parse(time.DateOnly, dob)
		if err != nil {
			response.Error(c, apperr.Validation("dateOfBirth must look like 2006-01-02"))
			return
		}
		in.DateOfBirth = &t
	}

	user, token, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Registration successful", gin.H{"user": user, "token": token})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !request.JSON(c, &req) {
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Login successful", gin.H{"user": user, "token": token})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile retrieved", user)
}

// POST /api/auth/password-reset/request
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req ResetRequest
	if !request.JSON(c, &req) {
		return
	}
	token, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cfg.ExposeResetToken && token != "" {
		response.OK(c, resetMessage, gin.H{"resetToken": token})
		return
	}
	response.OK(c, resetMessage, nil)
}

// POST /api/auth/password-reset/complete
func (h *Handler) CompletePasswordReset(c *gin.Context) {
	var req CompleteResetRequest
	if !request.JSON(c, &req) {
		return
	}
	if err := h.auth.CompletePasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password has been reset", nil)
}
