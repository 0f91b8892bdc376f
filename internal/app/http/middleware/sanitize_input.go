package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	// secrets are compared or verified byte for byte
	verbatimKeys = map[string]bool{"password": true, "token": true, "refreshToken": true}
)

// cleanString strips markup and stores the remaining text unescaped, so
// "a < b" and "Black & White" survive as typed. When decoding the entities
// would produce new markup the escaped form is kept.
func cleanString(s string) string {
	escaped := strictPolicy.Sanitize(s)
	plain := html.UnescapeString(escaped)
	if strictPolicy.Sanitize(plain) != escaped {
		return escaped
	}
	return plain
}

func cleanValue(v any) any {
	switch t := v.(type) {
	case string:
		return cleanString(t)
	case map[string]any:
		for k, inner := range t {
			if verbatimKeys[k] {
				continue
			}
			t[k] = cleanValue(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = cleanValue(inner)
		}
		return t
	}
	return v
}

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// write body. Other content types pass through untouched.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.ContentType(), "application/json") || c.Request.Body == nil {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, apperr.CodeValidation, "Invalid body")
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		// UseNumber keeps prices exact through the round trip
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var body any
		if err := dec.Decode(&body); err != nil {
			response.Fail(c, http.StatusBadRequest, apperr.CodeValidation, "Malformed JSON body")
			return
		}

		newBody, err := json.Marshal(cleanValue(body))
		if err != nil {
			response.Fail(c, http.StatusBadRequest, apperr.CodeValidation, "Malformed JSON body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}
