package middleware

import (
	"net/http"
	"strings"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"
	"gallery-api/internal/auth"
	"gallery-api/internal/logging"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeySubject = "subject_id"
	KeyEmail   = "email"
	KeyRole    = "role"
)

// AuthMiddleware accepts a bearer access token and exposes its claims on the context.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "Authorization header missing")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == authHeader || tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "Bearer token malformed")
			return
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected access token")
			response.Fail(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(KeySubject, claims.Subject)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(KeyRole)
		if !exists {
			response.Fail(c, http.StatusUnauthorized, apperr.CodeUnauthorized, "Role not found in token")
			return
		}
		if value != role {
			response.Fail(c, http.StatusForbidden, apperr.CodeForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

// SubjectID is the authenticated account id, or "" outside AuthMiddleware.
func SubjectID(c *gin.Context) string {
	return c.GetString(KeySubject)
}
