// Package response builds the {success, message, data?, error?, timestamp}
// envelope every endpoint answers with.
package response

import (
	"net/http"
	"time"

	"gallery-api/internal/apperr"
	"gallery-api/internal/logging"

	"github.com/gin-gonic/gin"
)

type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// Build never populates data on failure and never populates error on success.
func Build(success bool, data any, message string, errValue any) Envelope {
	env := Envelope{Success: success, Message: message, Timestamp: now()}
	if success {
		env.Data = data
	} else {
		env.Error = errValue
	}
	return env
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Build(true, data, message, nil))
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Build(true, data, message, nil))
}

// ExposeDetails makes 500 responses carry the underlying cause. Only set in development.
var ExposeDetails bool

// Error writes the envelope for err and aborts the chain.
func Error(c *gin.Context, err error) {
	ae := apperr.From(err)
	message := ae.Message
	if ae.Status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("code", ae.Code).
			Str("path", c.FullPath()).
			Msg("request failed")
		if ExposeDetails && ae.Err != nil {
			message = ae.Err.Error()
		}
	}
	c.AbortWithStatusJSON(ae.Status, Build(false, nil, message, ae.Code))
}

// Fail writes an error envelope from loose parts, for middleware that has no error value.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Build(false, nil, message, code))
}
