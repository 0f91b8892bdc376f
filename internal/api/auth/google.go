package auth

import (
	"net/http"
	"net/url"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"
	appauth "gallery-api/internal/auth"
	"gallery-api/internal/logging"

	"github.com/gin-gonic/gin"
)

const stateCookie = "oauth_state"

func googleDisabled() *apperr.Error {
	return apperr.Unavailable(apperr.CodeServiceUnavailable, "Google sign-in is not configured")
}

// GET /api/auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		response.Error(c, googleDisabled())
		return
	}
	state, err := appauth.RandomState()
	if err != nil {
		response.Error(c, apperr.Internal(err))
		return
	}
	// five minutes to finish the consent screen
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/", "", h.cfg.SecureCookies, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		response.Error(c, googleDisabled())
		return
	}
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		response.Error(c, apperr.Validation("missing code or state"))
		return
	}
	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		response.Error(c, apperr.BadRequest(apperr.CodeInvalidToken, "Invalid OAuth state"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.cfg.SecureCookies, true)

	identity, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("google exchange failed")
		response.Error(c, apperr.Unauthorized(apperr.CodeInvalidToken, "Google sign-in failed"))
		return
	}

	user, token, err := h.auth.GoogleSignIn(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cfg.FrontendRedirect == "" {
		response.OK(c, "Login successful", gin.H{"user": user, "token": token})
		return
	}
	c.Redirect(http.StatusFound, h.cfg.FrontendRedirect+"?token="+url.QueryEscape(token))
}
